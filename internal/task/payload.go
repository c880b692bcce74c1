package task

// SaveRequest is the bulk "save tasks for goal" body: the full renumbered set.
type SaveRequest struct {
	Tasks []SaveItem `json:"tasks"`
}

// SaveItem is one task in a bulk save request.
type SaveItem struct {
	ID             int     `json:"id,omitempty"`
	GoalID         int     `json:"goal_id"`
	Order          int     `json:"order"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	EstimatedHours float64 `json:"estimated_time"`
	Priority       int     `json:"priority"`
}

// SavePayload builds the bulk save body for tasks in their current sequence.
func SavePayload(tasks []Task) SaveRequest {
	items := make([]SaveItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, SaveItem{
			ID:             t.ID,
			GoalID:         t.GoalID,
			Order:          t.Order,
			Name:           t.Name,
			Description:    t.Description,
			EstimatedHours: t.EstimatedHours,
			Priority:       int(t.Priority),
		})
	}
	return SaveRequest{Tasks: items}
}
