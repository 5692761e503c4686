package console

type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

type Toast struct {
	Level   ToastLevel
	Message string
}

type ModalKind string

const (
	ModalDeleteConfirm   ModalKind = "delete-confirm"
	ModalRefreshConfirm  ModalKind = "refresh-confirm"
	ModalDocumentPicker  ModalKind = "document-picker"
	ModalClassification  ModalKind = "classification-picker"
	ModalDuplicates      ModalKind = "duplicates"
	ModalDuplicateEdit   ModalKind = "duplicate-edit"
	ModalDuplicateDelete ModalKind = "duplicate-delete"
	ModalMonthlyStats    ModalKind = "monthly-stats"
)

// Modal is the dialog currently open. SegmentID is set for dialogs that act
// on one segment.
type Modal struct {
	Kind      ModalKind
	Title     string
	Body      string
	SegmentID string
}
