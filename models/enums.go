package models

type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "EN_COURS"
	ProjectOnHold     ProjectStatus = "EN_ATTENTE"
	ProjectDone       ProjectStatus = "TERMINE"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	return s.Rank() > 0
}

// Rank orders statuses the way project lists are displayed: active work
// first, finished work last. Unknown statuses rank 0.
func (s ProjectStatus) Rank() int {
	switch s {
	case ProjectInProgress:
		return 1
	case ProjectOnHold:
		return 2
	case ProjectDone:
		return 3
	}
	return 0
}

type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "BASSE"
	ProjectPriorityMedium ProjectPriority = "MOYENNE"
	ProjectPriorityHigh   ProjectPriority = "HAUTE"
)

func (p ProjectPriority) Valid() bool {
	return p.Weight() > 0
}

// Weight grows with urgency.
func (p ProjectPriority) Weight() int {
	switch p {
	case ProjectPriorityLow:
		return 1
	case ProjectPriorityMedium:
		return 2
	case ProjectPriorityHigh:
		return 3
	}
	return 0
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "A_FAIRE"
	TaskInProgress TaskStatus = "EN_COURS"
	TaskOnHold     TaskStatus = "EN_ATTENTE"
	TaskDone       TaskStatus = "TERMINE"
)

func (s TaskStatus) Valid() bool {
	return s.Rank() > 0
}

func (s TaskStatus) Rank() int {
	switch s {
	case TaskTodo:
		return 1
	case TaskInProgress:
		return 2
	case TaskOnHold:
		return 3
	case TaskDone:
		return 4
	}
	return 0
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "FAIBLE"
	TaskPriorityMedium TaskPriority = "MOYENNE"
	TaskPriorityHigh   TaskPriority = "ELEVEE"
)

func (p TaskPriority) Valid() bool {
	return p.Weight() > 0
}

func (p TaskPriority) Weight() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	}
	return 0
}
