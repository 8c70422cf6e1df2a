package lessonplan

import "github.com/edify-labs/edify/internal/llm"

const systemPrompt = `You are an experienced educator creating detailed, evidence-based lesson plans in JSON format.
Use UK English only and avoid convoluted language.
Your primary requirements are:
1. Create practical, achievable activities with clear instructions
2. STRICTLY ensure the sum of all activity durations equals EXACTLY the requested total duration
3. Break down the time as follows:
   - Starter: 5-10 minutes
   - Main activities: Remaining time (total - starter - plenary)
   - Plenary: 5-10 minutes
4. Double-check all durations sum to the exact total before responding
5. Follow these schema requirements EXACTLY:
   - Provide EXACTLY 3 different lesson options
   - Include 3-4 learning objectives (no more, no less)
   - Include 3-4 initial prompts (no more, no less)
   - Include at least 3 cross-curricular links
   - Ensure all arrays have the correct number of elements as specified
6. Validate your JSON structure against the schema before responding`

const schemaDescription = `The response must conform to the following detailed structure:
{
  overview: {
    subject: string (required),
    topic: string (required),
    yearGroup: string (required),
    duration: number (required, must not exceed 60 minutes),
    learningObjectives: string[] (required, 3-4 clear objectives),
    initialPrompts: string[] (required, 3-4 thought-provoking questions to engage students)
  },
  lessonOptions: [
    {
      optionNumber: number (required, must include options 1, 2, and 3),
      starterActivity: {
        description: string (required),
        duration: number (required, typically 5-10 minutes),
        materials: string[] (required),
        instructions: string[] (required, step-by-step)
      },
      mainActivities: [{
        description: string (required),
        duration: number (required),
        materials: string[] (required),
        instructions: string[] (required, step-by-step),
        differentiation: {
          support: string[] (optional, strategies for lower ability),
          core: string[] (optional, main activities),
          extension: string[] (optional, challenges for higher ability)
        }
      }],
      plenary: {
        description: string (required),
        duration: number (required, typically 5-10 minutes),
        instructions: string[] (required),
        successIndicators: string[] (required, how to assess learning)
      }
    }
  ] (exactly 3 options required),
  reflectionSuggestions: string[] (required, 3-4 strategies for students to evaluate learning),
  differentiationAndSEN: {
    differentiation: {
      support: string[] (optional, general strategies for lower ability),
      core: string[] (optional, main strategies),
      extension: string[] (optional, strategies for higher ability)
    },
    senSupport: {
      visual: string[] (optional, support for visual impairments),
      auditory: string[] (optional, support for hearing impairments),
      cognitive: string[] (optional, support for learning difficulties)
    }
  },
  crossCurricularLinks: string[] (required, at least 3 links to other subjects, each "Subject: description"),
  assessmentQuestions: {
    knowledge: string[] (required, remembering facts),
    comprehension: string[] (required, understanding concepts),
    application: string[] (required, applying knowledge),
    analysis: string[] (required, analyzing information),
    synthesis: string[] (required, creating new ideas),
    evaluation: string[] (required, making judgments)
  },
  additionalNotes: string[] (required, pedagogical tips and advice)
}`

var userPrompt = llm.MustPrompt("lesson-planner", `
Create an educational lesson plan focusing on academic understanding and critical analysis:
Topic: {{.Topic}}
{{- if .Subject}}
Subject: {{.Subject}}
{{- end}}
{{- if .YearGroup}}
Year Group: {{.YearGroup}}
{{- end}}
Duration: {{.Duration}} minutes (STRICT REQUIREMENT)
{{- if .Objectives}}
Learning Objectives: {{join .Objectives ", "}}
{{- end}}

Please create an academically rigorous lesson plan that:
1. Develops analytical and critical thinking skills
2. Uses evidence-based teaching methods that:
   - Promote academic understanding
   - Incorporate varied learning resources
   - Support analytical skill development
3. Structure each teaching approach (total: {{.Duration}} minutes) as:
   - Opening activity (5-10 minutes)
   - Main learning activities (remaining time)
   - Concluding assessment (5-10 minutes)
4. Use academic sources and materials
5. Include varied teaching resources

Key Requirements:
1. Provide THREE distinct teaching approaches:
   - Approach 1: Research and analysis based learning
   - Approach 2: Structured academic exploration
   - Approach 3: Collaborative academic investigation
2. For each approach:
   - Use academic terminology
   - Include varied learning materials
   - Support evidence-based learning
   - Maintain exact timing ({{.Duration}} minutes)
3. Include assessment criteria that:
   - Measure academic understanding
   - Support analytical thinking
   - Evaluate learning outcomes

Additional Guidelines:
- Use academic language throughout
- Include varied source materials
- Support analytical discussion
- Focus on evidence-based learning
{{- if .DiverseNeeds}}
- Support diverse learning needs
{{- end}}
{{- if .Accessible}}
- Ensure accessible learning materials
{{- end}}

TIMING REQUIREMENT: Each approach must total EXACTLY {{.Duration}} minutes.
`)

type promptData struct {
	*Input
	DiverseNeeds bool
	Accessible   bool
}

func renderPrompt(in *Input) (string, error) {
	return userPrompt.Render(promptData{
		Input:        in,
		DiverseNeeds: in.wantsSupport(),
		Accessible:   in.needsAccessibleMaterials(),
	})
}
