package model

// Subject belongs to exactly one exam; (exam_id, code) is unique.
type Subject struct {
	ID     int64  `json:"id"`
	ExamID int64  `json:"exam_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

// SubjectWithTopics is the public catalog listing of a subject.
type SubjectWithTopics struct {
	Subject
	Topics []Topic `json:"topics"`
}

// Topic belongs to exactly one subject; (subject_id, code) is unique.
type Topic struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subject_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}
