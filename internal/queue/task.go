package queue

type TaskType string

const (
	// TaskTypeRelink re-evaluates every counter link in one room.
	TaskTypeRelink TaskType = "relink_room"
)
