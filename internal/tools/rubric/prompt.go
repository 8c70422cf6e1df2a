package rubric

import "github.com/edify-labs/edify/internal/llm"

const systemPrompt = `You are an educational assessment expert who creates detailed rubrics.
Use UK English only and avoid convoluted language.

You must respond with a valid JSON object that exactly matches the specified schema structure.

Do not include any additional text or explanations outside the JSON object.

The response should include:
1. Detailed criteria descriptions
2. Specific feedback for each level
3. Actionable suggestions for improvement
4. Clear instructions for teachers and students
5. Appropriate language for the specified key stage

Important notes:
- Use UK English spelling and terminology
- Avoid convoluted language
- Ensure feedback is constructive and actionable
- Match the academic level to the key stage
- Generate a unique UUID for the id field
- Use current timestamp for createdAt
- For Key Stage 3, include only levels 1-3 (emerging to proficient)
- For Key Stage 4, include levels 1-4 (emerging to advanced)
- For Key Stage 5, include all levels 1-5 (emerging to exceptional)

For the assessor field in the metadata:
- When assessmentType is "peer" or contains "peer", set assessor to "Peer"
- When assessmentType is "self" or contains "self", set assessor to "Self"
- When assessmentType is "teacher" or contains "teacher", set assessor to "Class Teacher"
- For any other assessmentType, set assessor to "Class Teacher"`

const schemaDescription = `The response must exactly match this JSON schema structure:
{
  "data": {
    "id": "string (UUID)",
    "version": "string (e.g., '1.0')",
    "createdAt": "string (ISO date)",
    "metadata": {
      "subject": "string (proper academic subject, NOT the assignment type)",
      "topic": "string",
      "assessmentType": "string",
      "assessor": "string (based on assessmentType: 'Peer', 'Self', or 'Class Teacher')",
      "keyStage": "string",
      "level": "number"
    },
    "rubric": {
      "criteria": [
        {
          "name": "string",
          "levels": {
            "exceptional": { "score": 5, "description": "string", "feedback": "string" },
            "advanced": { "score": 4, "description": "string", "feedback": "string" },
            "proficient": { "score": 3, "description": "string", "feedback": "string" },
            "basic": { "score": 2, "description": "string", "feedback": "string" },
            "emerging": { "score": 1, "description": "string", "feedback": "string" }
          }
        }
      ]
    }
  }
}`

var userPrompt = llm.MustPrompt("rubric-generator", `
Create an assessment rubric with the following details:

Assignment Details:
- Type: {{.AssignmentType}}
- Topic: {{.Topic}}
{{- if .CustomAssignmentType}}
- Custom Type: {{.CustomAssignmentType}}
{{- end}}
- Key Stage: {{.KeyStage}}
- Year Group: {{.YearGroup}}
- Assessment Type: {{.AssessmentType}}
{{- if .FileURL}}
- Document URL: {{.FileURL}}
{{- end}}

Required Criteria: {{join .Criteria ", "}}
{{- if .AdditionalInstructions}}

Additional Instructions: {{.AdditionalInstructions}}
{{- end}}
{{- if .Document}}

Document Content:
{{.Document}}
{{- end}}
`)

type promptData struct {
	*Input
	Document string
}

func renderPrompt(in *Input) (string, error) {
	return userPrompt.Render(promptData{Input: in, Document: in.document()})
}
