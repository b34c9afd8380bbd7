package entity

import "github.com/ysmood/gson"

// EvaluationResult is the decoded return value of a remotely executed script.
type EvaluationResult = gson.JSON
