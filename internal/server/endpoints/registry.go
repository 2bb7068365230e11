package endpoints

import "github.com/enesgrahovac/book-quest/internal/api"

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Course endpoints
		&GetCourseEndpoint{},
		&DeleteCourseEndpoint{},
		&AnalyzeBookEndpoint{},
		&GetBookEndpoint{},
		&GeneratePlanEndpoint{},
		&GetPlanEndpoint{},
		&EditPlanEndpoint{},

		// LLM call history endpoints
		&ListLLMCallsEndpoint{},
		&LLMCallCountsEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&SetPromptEndpoint{},
		&ClearPromptEndpoint{},

		// Settings endpoints
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},
	}
}

// CourseCommands returns endpoints grouped under the "course" command.
func CourseCommands() []api.Endpoint {
	return []api.Endpoint{
		&GetCourseEndpoint{},
		&DeleteCourseEndpoint{},
	}
}

// BookCommands returns endpoints grouped under the "book" command.
func BookCommands() []api.Endpoint {
	return []api.Endpoint{
		&AnalyzeBookEndpoint{},
		&GetBookEndpoint{},
	}
}

// PlanCommands returns endpoints grouped under the "plan" command.
func PlanCommands() []api.Endpoint {
	return []api.Endpoint{
		&GeneratePlanEndpoint{},
		&GetPlanEndpoint{},
		&EditPlanEndpoint{},
	}
}

// LLMCallCommands returns endpoints grouped under the "llmcalls" command.
func LLMCallCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListLLMCallsEndpoint{},
		&LLMCallCountsEndpoint{},
	}
}

// PromptCommands returns endpoints grouped under the "prompts" command.
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&SetPromptEndpoint{},
		&ClearPromptEndpoint{},
	}
}

// SettingsCommands returns endpoints grouped under the "settings" command.
func SettingsCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},
	}
}
