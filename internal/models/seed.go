package models

import "time"

// DefaultTeamMembers seeds the member list on first run
var DefaultTeamMembers = []string{"Alex", "Jordan", "Sam", "Taylor", "Morgan", "Casey"}

// DefaultProjects seeds the project list on first run
var DefaultProjects = []string{"Website Redesign", "Mobile App", "API Platform", "Marketing", "Infrastructure"}

// SeedTasks returns the board shown before anything has been saved
func SeedTasks(now time.Time) []Task {
	seed := []Task{
		{ID: "1", Title: "Design homepage layout", Description: "Create wireframes and mockups", Priority: PriorityHigh, Column: ColumnTodo, Assignee: "Alex", Project: "Website Redesign"},
		{ID: "2", Title: "Set up project repo", Priority: PriorityMedium, Column: ColumnTodo, Assignee: "Jordan", Project: "API Platform"},
		{ID: "3", Title: "API integration", Description: "Connect to backend services", Priority: PriorityHigh, Column: ColumnInProgress, Assignee: "Sam", Project: "API Platform"},
		{ID: "4", Title: "Write unit tests", Priority: PriorityLow, Column: ColumnInProgress, Assignee: "Taylor", Project: "Mobile App"},
		{ID: "5", Title: "Initial research", Description: "Market analysis complete", Priority: PriorityMedium, Column: ColumnDone, Assignee: "Morgan", Project: "Marketing"},
	}
	for i := range seed {
		seed[i].Comments = []Comment{}
		seed[i].Attachments = []Attachment{}
		seed[i].CreatedAt = now
	}
	return seed
}
