package dto

// GeminiAPIRequest is the generateContent request payload.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content is a single message in a Gemini request.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one text part of a Gemini message.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the generateContent response payload.
type GeminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
