package openrouter

// Params is the full chat-completion request body.
//
// Optional fields are left nil when unset and are omitted from the encoded
// JSON. A temperature of 0 that was set explicitly is still sent.
type Params struct {
	Model          string   `json:"model"`
	Messages       any      `json:"messages"`
	Temperature    *float64 `json:"temperature,omitempty"`
	ResponseSchema any      `json:"response_schema,omitempty"`
}

// SimpleParams carries only the optional tuning fields. It is used with
// Client.Call, where the model and prompt are passed separately and the
// message list is synthesized.
type SimpleParams struct {
	Temperature    *float64 `json:"temperature,omitempty"`
	ResponseSchema any      `json:"response_schema,omitempty"`
}

// Message is a single chat message.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is one typed part of a message's content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Build returns Params for model and messages with no optional fields set.
func Build(model string, messages any) Params {
	return Params{
		Model:    model,
		Messages: messages,
	}
}

// WithTemperature returns a copy of p with the sampling temperature set.
func (p Params) WithTemperature(temperature float64) Params {
	p.Temperature = &temperature
	return p
}

// WithResponseSchema returns a copy of p with the response schema set.
func (p Params) WithResponseSchema(schema any) Params {
	p.ResponseSchema = schema
	return p
}

// Validate reports whether p can be sent.
func (p Params) Validate() error {
	if p.Model == "" {
		return &SerializationError{Op: OpEncode, Err: errMissingModel}
	}
	if p.Messages == nil {
		return &SerializationError{Op: OpEncode, Err: errMissingMessages}
	}
	return nil
}

// WithTemperature returns a copy of s with the sampling temperature set.
func (s SimpleParams) WithTemperature(temperature float64) SimpleParams {
	s.Temperature = &temperature
	return s
}

// WithResponseSchema returns a copy of s with the response schema set.
func (s SimpleParams) WithResponseSchema(schema any) SimpleParams {
	s.ResponseSchema = schema
	return s
}

// Full converts s into Params for model and messages, keeping the optional
// fields.
func (s SimpleParams) Full(model string, messages any) Params {
	p := Build(model, messages)
	if s.Temperature != nil {
		t := *s.Temperature
		p.Temperature = &t
	}
	p.ResponseSchema = s.ResponseSchema
	return p
}

// UserPrompt wraps prompt into a single user message with one text part.
func UserPrompt(prompt string) []Message {
	return []Message{
		{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: prompt},
			},
		},
	}
}

// PromptParams builds Params for a plain prompt. A nil opts leaves the
// optional fields unset.
func PromptParams(model, prompt string, opts *SimpleParams) Params {
	if opts == nil {
		return Build(model, UserPrompt(prompt))
	}
	return opts.Full(model, UserPrompt(prompt))
}
