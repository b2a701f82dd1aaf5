package model

// Exam is the root of the catalog hierarchy (e.g. PAES).
type Exam struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ExamWithSubjects is the public catalog listing of an exam.
type ExamWithSubjects struct {
	Exam
	Subjects []Subject `json:"subjects"`
}

// Triple is a resolved exam/subject/topic scope.
type Triple struct {
	Exam    Exam    `json:"exam"`
	Subject Subject `json:"subject"`
	Topic   Topic   `json:"topic"`
}
