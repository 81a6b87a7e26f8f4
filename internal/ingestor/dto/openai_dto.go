package dto

// OpenAPIReq is the request payload for an OpenAI-compatible chat completion.
type OpenAPIReq struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAPIRes is the response from an OpenAI-compatible chat completion.
type OpenAPIRes struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice.
type Choice struct {
	Message Message `json:"message"`
}

// Usage reports token consumption for the request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
