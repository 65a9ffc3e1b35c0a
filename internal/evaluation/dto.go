package evaluation

type CreateEvaluationDTO struct {
	TaskID           int64  `json:"task" validate:"required"`
	Difficulty       string `json:"difficulty" validate:"max=20"`
	PerformanceScore int    `json:"performance_score" validate:"required,min=1,max=5"`
	Feedback         string `json:"feedback" validate:"max=2000"`
}
