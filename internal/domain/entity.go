package domain

// EntityType identifies the kind of context entity attached to a message.
type EntityType string

const (
	EntityStack      EntityType = "stack"
	EntityRepository EntityType = "repository"
)

// Forge values accepted for repository entities.
const (
	ForgeGitHub    = "github"
	ForgeGitLab    = "gitlab"
	ForgeBitbucket = "bitbucket"
)

// ValidForges contains all accepted repository forge values.
var ValidForges = []string{ForgeGitHub, ForgeGitLab, ForgeBitbucket}

// EntityRef is a descriptive context object attached to a task at message
// time. It is passed to the server verbatim and never mutated by the
// client. Exactly one of the two shapes is populated:
//
//	{type: stack, name, project}
//	{type: repository, name, org, forge}
type EntityRef struct {
	Type    EntityType `json:"type"`
	Name    string     `json:"name"`
	Project string     `json:"project,omitempty"`
	Org     string     `json:"org,omitempty"`
	Forge   string     `json:"forge,omitempty"`
}

// NewStackRef builds a stack entity reference. Both fields are required.
func NewStackRef(name, project string) (EntityRef, error) {
	if name == "" {
		return EntityRef{}, NewValidationError("stack name is required")
	}
	if project == "" {
		return EntityRef{}, NewValidationError("stack project is required with stack name")
	}
	return EntityRef{Type: EntityStack, Name: name, Project: project}, nil
}

// NewRepositoryRef builds a repository entity reference. Name and org are
// required; an empty forge defaults to github.
func NewRepositoryRef(name, org, forge string) (EntityRef, error) {
	if name == "" {
		return EntityRef{}, NewValidationError("repository name is required")
	}
	if org == "" {
		return EntityRef{}, NewValidationError("repository org is required with repository name")
	}
	if forge == "" {
		forge = ForgeGitHub
	}
	if !validForge(forge) {
		return EntityRef{}, NewValidationError("invalid forge: " + forge + " (use github, gitlab, or bitbucket)")
	}
	return EntityRef{Type: EntityRepository, Name: name, Org: org, Forge: forge}, nil
}

func validForge(forge string) bool {
	for _, f := range ValidForges {
		if forge == f {
			return true
		}
	}
	return false
}

// EntityDiff is the add/remove set of context entities carried by a
// user_message. Both lists are always serialized, even when empty, to
// match the wire format the server expects.
type EntityDiff struct {
	Add    []EntityRef `json:"add"`
	Remove []EntityRef `json:"remove"`
}

// NewEntityDiff builds a diff that adds the given refs and removes none.
func NewEntityDiff(add ...EntityRef) EntityDiff {
	diff := EntityDiff{Add: []EntityRef{}, Remove: []EntityRef{}}
	diff.Add = append(diff.Add, add...)
	return diff
}
