// Package web provides HTTP request and response types for the workflow API.
package web

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateDefinitionRequest represents the request body for creating a new
// process definition with its initial version.
type CreateDefinitionRequest struct {
	Name        string `json:"name"         validate:"required,min=1,max=255"`
	Description string `json:"description"`
	ProcessID   string `json:"process_id"`
	Document    string `json:"document"     validate:"required"`
	ChangeNotes string `json:"change_notes"`
	CreatedBy   string `json:"created_by"`
}

// UpdateDefinitionRequest represents the request body for updating definition
// metadata. All fields are optional to support partial updates.
type UpdateDefinitionRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
}

// CreateVersionRequest represents the request body for adding a version to a
// definition. With publish set the version becomes active immediately.
type CreateVersionRequest struct {
	Document    string `json:"document"     validate:"required"`
	ChangeNotes string `json:"change_notes"`
	CreatedBy   string `json:"created_by"`
	Publish     bool   `json:"publish"`
}

// RollbackRequest represents the request body for rolling a definition back
// to the behavior of an earlier version.
type RollbackRequest struct {
	CreatedBy string `json:"created_by"`
}

// ValidateDocumentRequest represents the request body for validating a
// process document without persisting it.
type ValidateDocumentRequest struct {
	Document  string `json:"document"   validate:"required"`
	ProcessID string `json:"process_id"`
}

// CreateProjectRequest represents the request body for instantiating a
// project on the active version of a definition.
type CreateProjectRequest struct {
	Name         string `json:"name"          validate:"required,min=1,max=255"`
	Description  string `json:"description"`
	DefinitionID string `json:"definition_id" validate:"required"`
	CreatedBy    string `json:"created_by"`
}

// DecisionRequest represents the request body for resolving a project's ready
// checkpoint.
type DecisionRequest struct {
	Action            string `json:"action"              validate:"required"`
	TargetGroup       string `json:"target_group,omitempty"`
	TargetItem        string `json:"target_item,omitempty"`
	Reason            string `json:"reason,omitempty"`
	DecisionMakerID   string `json:"decision_maker_id"`
	DecisionMakerName string `json:"decision_maker_name"`
}

// AddCommentRequest represents the request body for attaching a note to a
// project.
type AddCommentRequest struct {
	Group    string `json:"workflow_group,omitempty"`
	Item     string `json:"workflow_item,omitempty"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Content  string `json:"content" validate:"required,min=1"`
}

// DecisionResponse reports the transition a committed decision caused.
type DecisionResponse struct {
	ProjectID    string `json:"project_id"`
	Action       string `json:"action"`
	FromGroup    string `json:"from_group"`
	FromItem     string `json:"from_item,omitempty"`
	CurrentGroup string `json:"current_group"`
	CurrentItem  string `json:"current_item,omitempty"`
	Completed    bool   `json:"completed"`
}
