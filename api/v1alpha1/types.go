package v1alpha1

// TaskKind identifies which remote operation a task runs.
type TaskKind string

const (
	TaskKindCreate           TaskKind = "CREATE"
	TaskKindLoad             TaskKind = "LOAD"
	TaskKindInteractive      TaskKind = "INTERACTIVE"
	TaskKindOrderNuggets     TaskKind = "ORDER_NUGGETS"
	TaskKindConfirmMatch     TaskKind = "CONFIRM_MATCH"
	TaskKindConfirmCustom    TaskKind = "CONFIRM_CUSTOM"
	TaskKindUpdateAttributes TaskKind = "UPDATE_ATTRIBUTES"
)

// TaskKinds lists every kind in a stable order.
var TaskKinds = []TaskKind{
	TaskKindCreate,
	TaskKindLoad,
	TaskKindInteractive,
	TaskKindOrderNuggets,
	TaskKindConfirmMatch,
	TaskKindConfirmCustom,
	TaskKindUpdateAttributes,
}

// Terminal values of TaskStatus.State.
const (
	TaskStateSuccess = "SUCCESS"
	TaskStateFailure = "FAILURE"
)

// StartTaskRequest holds the parameters of a start-task call. Only the
// fields relevant to Kind are sent.
type StartTaskRequest struct {
	Kind           TaskKind `json:"kind" validate:"required,task_kind"`
	OrganizationID int      `json:"organisationId" validate:"gt=0"`
	BaseName       string   `json:"baseName" validate:"required,base_name"`

	DocumentIDs []int    `json:"document_ids,omitempty"`
	Attributes  []string `json:"attributes,omitempty" validate:"dive,required"`

	DocumentName    string `json:"documentName,omitempty"`
	DocumentContent string `json:"documentContent,omitempty"`

	NuggetText            string `json:"nuggetText,omitempty"`
	StartIndex            int    `json:"startIndex,omitempty"`
	EndIndex              int    `json:"endIndex,omitempty"`
	InteractiveCallTaskID string `json:"interactiveCallTaskId,omitempty"`
}

// StartTaskResponse is returned by every start endpoint.
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

// TaskStatus is the decoded body of the status endpoint.
type TaskStatus struct {
	State string      `json:"state"`
	Meta  *StatusMeta `json:"meta,omitempty"`
}

type StatusMeta struct {
	Status           *string           `json:"status,omitempty"`
	DocumentBaseToUI *DocumentBaseToUI `json:"document_base_to_ui,omitempty"`
}

type DocumentBaseToUI struct {
	Msg DocumentBaseMsg `json:"msg"`
}

type DocumentBaseMsg struct {
	Attributes *[]string          `json:"attributes,omitempty"`
	Nuggets    []NuggetDescriptor `json:"nuggets"`
}

// NuggetDescriptor is one nugget as the service reports it. Offsets are not
// checked against the text here. A descriptor that could not be decoded
// keeps the reason in Err instead of failing the whole status.
type NuggetDescriptor struct {
	Document  NuggetDocument `json:"document"`
	StartChar int            `json:"start_char"`
	EndChar   int            `json:"end_char"`

	err error
}

type NuggetDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// StatusDetail returns meta.status when present and non-empty.
func (s *TaskStatus) StatusDetail() string {
	if s.Meta == nil || s.Meta.Status == nil {
		return ""
	}
	return *s.Meta.Status
}

// DocumentBase returns the success payload, or nil when the task did not
// report one.
func (s *TaskStatus) DocumentBase() *DocumentBaseMsg {
	if s.Meta == nil || s.Meta.DocumentBaseToUI == nil {
		return nil
	}
	return &s.Meta.DocumentBaseToUI.Msg
}
