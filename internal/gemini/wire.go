package gemini

// Request and response bodies of the generateContent REST endpoint.

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type generationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// schema is the OpenAPI subset Gemini accepts for structured output.
type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func textPart(s string) part {
	return part{Text: s}
}

func userContent(parts ...part) content {
	return content{Role: "user", Parts: parts}
}

func system(text string) *content {
	return &content{Parts: []part{textPart(text)}}
}

func jsonOutput(s *schema) *generationConfig {
	return &generationConfig{ResponseMimeType: "application/json", ResponseSchema: s}
}

func object(required []string, props map[string]*schema) *schema {
	return &schema{Type: "OBJECT", Properties: props, Required: required}
}

func str(description string) *schema {
	return &schema{Type: "STRING", Description: description}
}

func num(description string) *schema {
	return &schema{Type: "NUMBER", Description: description}
}

func boolean(description string) *schema {
	return &schema{Type: "BOOLEAN", Description: description}
}

func array(items *schema, description string) *schema {
	return &schema{Type: "ARRAY", Items: items, Description: description}
}

func enum(values ...string) *schema {
	return &schema{Type: "STRING", Enum: values}
}
