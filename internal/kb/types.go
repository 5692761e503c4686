package kb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AddMethod tags how a segment entered the unreviewed pool.
type AddMethod string

const (
	AddMethodLegacy      AddMethod = "旧QA"
	AddMethodDailyImport AddMethod = "微信每日QA"
	AddMethodManual      AddMethod = "人工添加"
	AddMethodUser        AddMethod = "用户添加"
	AddMethodUnknown     AddMethod = "未知"
)

// Normalize maps any unrecognised tag to AddMethodUnknown.
func (m AddMethod) Normalize() AddMethod {
	switch m {
	case AddMethodLegacy, AddMethodDailyImport, AddMethodManual, AddMethodUser:
		return m
	default:
		return AddMethodUnknown
	}
}

// Epoch is a timestamp in epoch seconds. The backend sends either integers,
// floats, numeric strings or null; all decode to whole seconds.
type Epoch int64

func (e *Epoch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*e = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid epoch %q: %w", data, err)
	}
	*e = Epoch(math.Trunc(f))
	return nil
}

// Segment is one QA pair record in the knowledge base.
type Segment struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	DocumentName   string    `json:"document_name,omitempty"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Content        string    `json:"content,omitempty"`
	Classification string    `json:"classification,omitempty"`
	AddMethod      AddMethod `json:"add_method,omitempty"`
	AddSource      string    `json:"add_source,omitempty"`
	CreatedAt      Epoch     `json:"created_at"`
	UpdatedAt      Epoch     `json:"updated_at"`
}

// Document is a reviewed category bucket.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is one entry of the classification picklist.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DuplicateReport is the server-computed grouping of similar reviewed segments.
type DuplicateReport struct {
	TotalGroups     int              `json:"total_groups"`
	TotalDuplicates int              `json:"total_duplicates"`
	Groups          []DuplicateGroup `json:"groups"`
}

type DuplicateGroup struct {
	GroupID    int             `json:"group_id"`
	Count      int             `json:"count"`
	Similarity float64         `json:"similarity"`
	Items      []DuplicateItem `json:"items"`
}

type DuplicateItem struct {
	SegmentID      string  `json:"segment_id"`
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	Classification string  `json:"classification"`
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Similarity     float64 `json:"similarity"`
	UpdatedAt      Epoch   `json:"updated_at"`
}

// UpdateRequest is the body of POST /api/segment/update.
type UpdateRequest struct {
	DatasetID  string `json:"dataset_id"`
	DocumentID string `json:"document_id"`
	SegmentID  string `json:"segment_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ApproveRequest is the body of POST /api/segment/approve.
type ApproveRequest struct {
	SourceDocumentID string `json:"source_document_id"`
	SegmentID        string `json:"segment_id"`
	TargetDocumentID string `json:"target_document_id"`
	Question         string `json:"question"`
	Answer           string `json:"answer"`
}

// DeleteRequest is the body of POST /api/segment/delete.
type DeleteRequest struct {
	DatasetID  string `json:"dataset_id"`
	DocumentID string `json:"document_id"`
	SegmentID  string `json:"segment_id"`
}

// Scope names the persisted collection a segment lives in.
type Scope string

const (
	ScopeUnreviewed Scope = "unreviewed"
	ScopeReviewed   Scope = "reviewed"
)

// Datasets carries the two collection identifiers the backend uses to tell
// the unreviewed pool from the reviewed documents.
type Datasets struct {
	Unreviewed string
	Reviewed   string
}

// For returns the dataset id for scope. Anything but ScopeUnreviewed
// resolves to the reviewed dataset.
func (d Datasets) For(scope Scope) string {
	if scope == ScopeUnreviewed {
		return d.Unreviewed
	}
	return d.Reviewed
}
