package console

// Pending is the single action awaiting confirmation in a session.
// Exactly one of the variants below.
type Pending interface {
	isPending()
}

type NoPending struct{}

// PendingApproval is an approval into an explicitly chosen reviewed document.
type PendingApproval struct {
	SegmentID        string
	SourceDocumentID string
	TargetDocumentID string
	Question         string
	Answer           string
}

// PendingDeletion carries the area the delete was requested from; the area
// selects the dataset id of the delete call.
type PendingDeletion struct {
	SegmentID  string
	DocumentID string
	Area       Area
}

type PendingDuplicateDelete struct {
	SegmentID  string
	DocumentID string
}

type PendingDuplicateEdit struct {
	SegmentID  string
	DocumentID string
	Question   string
	Answer     string
}

func (NoPending) isPending()              {}
func (PendingApproval) isPending()        {}
func (PendingDeletion) isPending()        {}
func (PendingDuplicateDelete) isPending() {}
func (PendingDuplicateEdit) isPending()   {}

// HasPending reports whether a confirmation is outstanding.
func HasPending(p Pending) bool {
	switch p.(type) {
	case nil, NoPending:
		return false
	default:
		return true
	}
}
