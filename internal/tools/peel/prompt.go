package peel

import "github.com/edify-labs/edify/internal/llm"

const systemPrompt = `Use UK English only and avoid convoluted language.
You are an expert writing tutor who generates well-structured PEEL paragraphs for educational purposes.
Each PEEL paragraph consists of Point, Evidence, Explanation, and Link components.
When responding, provide thoughtful feedback on strengths and areas for improvement.
You MUST use proper markdown formatting (bold, italic, lists, headings) in your response.
Your response must be in valid JSON format matching the required schema exactly.`

const schemaDescription = `The response must conform to the following structure:
{
  content: {
    point: string (required, a clear statement of the main idea or argument),
    evidence: string (required, specific examples, data, or quotes that support the point),
    explanation: string (required, analysis of how the evidence supports the point),
    link: string (required, a connection back to the main argument or transition),
    feedback: {
      strengths: string (required, list of strengths in the paragraph),
      improvements: string (required, list of areas for improvement)
    }
  },
  metadata: {
    subject: string (optional),
    complexity: string (optional),
    timestamp: string (required, ISO date)
  }
}`

var userPrompt = llm.MustPrompt("peel-generator", `
Generate a well-structured PEEL paragraph about the following topic: {{.Topic}}.
{{- with .WordCountRange}}
The paragraph must strictly adhere to a word count between {{.Min}} and {{.Max}} words. This is a critical requirement.
{{- else}}
The paragraph should be approximately 300-400 words in length.
{{- end}}
{{- if .Subject}}
Subject area: {{.Subject}}
{{- end}}
{{- if .Complexity}}
Complexity level: {{.Complexity}}
{{- end}}
{{- if .Tone}}
Tone: {{.Tone}}
{{- end}}
{{- if .Audience}}
Target audience: {{.Audience}}
{{- end}}

Format your response using PROPER MARKDOWN for all content fields. This is essential for correct display:
- Use **bold text** for important concepts and key terms
- Use *italic text* for emphasis
- Use ## headings for section titles (if needed)
- Use proper bullet lists with - or * for listing items
- Use line breaks for structural clarity
- Ensure correct markdown syntax throughout

Return a JSON object with these exact keys:
{
  "content": {
    "point": "A clear statement of the main idea or argument using proper markdown",
    "evidence": "Specific examples, data, or quotes that support the point using proper markdown",
    "explanation": "Analysis of how the evidence supports the point using proper markdown",
    "link": "A connection back to the main argument or transition using proper markdown",
    "feedback": {
      "strengths": "List of strengths using proper markdown bullet points OR an array of strings",
      "improvements": "List of areas for improvement using proper markdown bullet points OR an array of strings"
    }
  },
  "metadata": {
    "subject": "{{.Subject}}",
    "complexity": "{{.Complexity}}",
    "timestamp": "{{.Timestamp}}"
  }
}

For the feedback section, you can provide either:
1. A single markdown-formatted string with bullet points, OR
2. An array of string items ["First point", "Second point", "Third point"]

Count words carefully in your response before returning it. A word is defined as any sequence of characters separated by spaces.
`)

type promptData struct {
	*Input
	Timestamp string
}
