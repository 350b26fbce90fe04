// Package bot implements the conversational core of RemindMeBot: tool
// dispatch, the per-chat conversation orchestrator, and the button-driven
// interaction flows.
package bot

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/roybase/remindmebot/internal/models"
)

// toolDefinitions returns the five-operation tool schema given to the model.
func toolDefinitions() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        models.ToolCreateReminders,
				Description: openai.String("Schedule one or multiple reminders for the user."),
				Parameters: shared.FunctionParameters{
					"type": "object",
					"properties": map[string]interface{}{
						"reminders": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"title": map[string]interface{}{
										"type":        "string",
										"description": "Title of the reminder",
									},
									"time": map[string]interface{}{
										"type":        "string",
										"description": "Absolute fire time as an ISO string, e.g. 2025-11-19T14:00:00",
									},
								},
								"required": []string{"title", "time"},
							},
						},
						"message": map[string]interface{}{
							"type":        "string",
							"description": "Short confirmation message to show the user",
						},
					},
					"required": []string{"reminders", "message"},
				},
			},
		},
		{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        models.ToolListReminders,
				Description: openai.String("List all pending reminders for the user."),
				Parameters:  chatScopedParameters(),
			},
		},
		{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        models.ToolRequestDelete,
				Description: openai.String("Show the user's reminders with selection buttons so one can be deleted. Deletion itself happens through the buttons."),
				Parameters:  chatScopedParameters(),
			},
		},
		{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        models.ToolRequestUpdate,
				Description: openai.String("Show the user's reminders with selection buttons so one can be updated. The actual edit happens later via update_reminder_by_id."),
				Parameters:  chatScopedParameters(),
			},
		},
		{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        models.ToolUpdateReminderByID,
				Description: openai.String("Update a specific reminder by its ID once the new title and/or time are known."),
				Parameters: shared.FunctionParameters{
					"type": "object",
					"properties": map[string]interface{}{
						"id": map[string]interface{}{
							"type":        "string",
							"description": "The ID of the reminder to update",
						},
						"params": map[string]interface{}{
							"type":        "object",
							"description": "Fields to update (provide one or both)",
							"properties": map[string]interface{}{
								"title": map[string]interface{}{
									"type":        "string",
									"description": "New title for the reminder",
								},
								"time": map[string]interface{}{
									"type":        "string",
									"description": "New fire time as an ISO string",
								},
							},
							"additionalProperties": false,
						},
					},
					"required": []string{"id", "params"},
				},
			},
		},
	}
}

// chatScopedParameters is the shared schema of the tools that take only a chat ID.
func chatScopedParameters() shared.FunctionParameters {
	return shared.FunctionParameters{
		"type": "object",
		"properties": map[string]interface{}{
			"chat_id": map[string]interface{}{
				"type":        "integer",
				"description": "The chat ID of the user",
			},
		},
		"required": []string{"chat_id"},
	}
}
