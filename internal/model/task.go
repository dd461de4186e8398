package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Built-in task statuses. A task status may also be the slug of a custom
// board defined on the parent project.
const (
	TaskStatusTodo  = "todo"
	TaskStatusDoing = "doing"
	TaskStatusDone  = "done"
)

// BuiltinStatus reports whether s is one of the fixed statuses every project
// supports regardless of its custom boards.
func BuiltinStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusDoing || s == TaskStatusDone
}

// Comment is a single note on a task, appended in order and never edited.
type Comment struct {
	ID        string        `bson:"id"         json:"id"`
	Author    bson.ObjectID `bson:"author"     json:"author"`
	Text      string        `bson:"text"       json:"text"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// Task is a unit of work scoped to a project. The serial number is assigned
// atomically at creation, is unique within the project, and is never reused
// even after deletion.
type Task struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	ProjectID    bson.ObjectID `bson:"project_id"`
	SerialNumber int64         `bson:"serial_number"`
	Title        string        `bson:"title"`
	Description  string        `bson:"description,omitempty"`
	Type         string        `bson:"type"`
	Status       string        `bson:"status"`
	Deadline     *time.Time    `bson:"deadline,omitempty"`
	Assignee     bson.ObjectID `bson:"assignee"`
	Comments     []Comment     `bson:"comments"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}
