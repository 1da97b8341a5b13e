package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Task difficulty and content-type defaults.
const (
	TaskTypePlaintext   = "plaintext"
	DifficultyBeginner  = "beginner"
	DefaultMaxPoints    = 100
	ShareCodeLength     = 8
	PassThresholdPct    = 80.0
	HistogramBucketSize = 10
)

// Task is a programming exercise created by a teacher. The share code allows
// read-only lookup without an assignment.
type Task struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	TeacherID           uint           `gorm:"not null;index" json:"teacher_id"`
	Title               string         `gorm:"size:255;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description"`
	ProgrammingLanguage string         `gorm:"size:50;not null" json:"programming_language"`
	TaskContent         string         `gorm:"type:text;not null" json:"task_content"`
	TaskType            string         `gorm:"size:32;not null;default:plaintext" json:"task_type"`
	ExpectedOutput      string         `gorm:"type:text" json:"expected_output"`
	Hints               datatypes.JSON `gorm:"type:json" json:"hints"`
	MaxPoints           int            `gorm:"not null;default:100" json:"max_points"`
	TimeLimit           *int           `json:"time_limit"`
	Difficulty          string         `gorm:"size:32;not null;default:beginner" json:"difficulty"`
	ShareCode           string         `gorm:"size:8;uniqueIndex;not null" json:"share_code"`
	IsActive            bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	Teacher             User           `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HintsSlice decodes the stored hints JSON into an ordered string slice.
func (t Task) HintsSlice() []string {
	if len(t.Hints) == 0 {
		return []string{}
	}

	var hints []string
	if err := json.Unmarshal(t.Hints, &hints); err != nil {
		return []string{}
	}
	return hints
}

// EncodeHints marshals an ordered hint list into the stored JSON column.
func EncodeHints(hints []string) datatypes.JSON {
	if hints == nil {
		hints = []string{}
	}
	encoded, err := json.Marshal(hints)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}
