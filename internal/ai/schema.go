package ai

import (
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/models"
	"google.golang.org/genai"
)

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func objectSchema(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}

// questionListSchema is the response schema sent with every request: a JSON array of questions.
var questionListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: objectSchema(map[string]*genai.Schema{
		"text": stringSchema("The main text of the question. Preserve original newlines and formatting. " +
			"For 'dropdown' type, use '" + models.DropdownPlaceholder + "' as a placeholder where the dropdown should appear in the text."),
		"type": {
			Type:        genai.TypeString,
			Enum:        []string{"single", "multiple", "dropdown", "drag_drop"},
			Description: "Use 'dropdown' for Hot Area/inline selects and 'drag_drop' for Select and Place questions.",
		},
		"options": {
			Type:        genai.TypeArray,
			Description: "For 'single'/'multiple': answer choices. For 'drag_drop': the source list of draggable items.",
			Items: objectSchema(map[string]*genai.Schema{
				"label": stringSchema("The option's label, e.g. 'A', 'B'."),
				"text":  stringSchema("The text content of the option."),
			}, "label", "text"),
		},
		"dropdowns": {
			Type:        genai.TypeArray,
			Description: "For 'dropdown' type only.",
			Items: objectSchema(map[string]*genai.Schema{
				"label":         stringSchema("Label for the dropdown (used only if not inline)."),
				"options":       {Type: genai.TypeArray, Items: stringSchema("")},
				"correctAnswer": stringSchema("Correct choice."),
			}, "label", "options", "correctAnswer"),
		},
		"dropZones": {
			Type:        genai.TypeArray,
			Description: "For 'drag_drop' type only. The target slots where items are placed.",
			Items: objectSchema(map[string]*genai.Schema{
				"label": stringSchema("Text describing the slot, or empty."),
			}),
		},
		"correctAnswers": {
			Type: genai.TypeArray,
			Description: "For single/multiple: correct labels. For dropdown: correct strings in dropdown order. " +
				"For drag_drop: option labels in drop zone order.",
			Items: stringSchema(""),
		},
		"explanation": stringSchema("An optional explanation for the correct answer."),
	}, "text", "type"),
}

const questionTypesGuide = `Handle these question types:
1. **Single Choice**: Standard multiple choice with one correct answer.
2. **Multiple Choice**: Standard multiple choice with multiple correct answers.
3. **Dropdown / Hot Area**: Questions with inline dropdowns.
   - Type: "dropdown"
   - 'text': The full text/code. INSERT '{{dropdown}}' markers exactly where the dropdowns should be.
   - 'dropdowns': Array of dropdown definitions. Order matches the {{dropdown}} markers.
4. **Drag and Drop / Select and Place**: A source list of values and an answer area with slots.
   - Type: "drag_drop"
   - 'options': The draggable values. Assign simple labels if none exist (A, B, C...).
   - 'dropZones': One entry per slot in the answer area.
   - 'correctAnswers': The option LABELS that go into the slots, in order.`

const textPromptTemplate = `You are an expert at parsing text content containing practice exam questions. Analyze the following text and extract all questions into a structured JSON format.

` + questionTypesGuide + `

The text to parse is:
---
{{TEXT_CONTENT}}
---

Return ONLY a valid JSON array of question objects.`

const imagePrompt = `You are an expert at analyzing images of practice exam questions. Analyze the following image and extract all questions into a structured JSON format.

` + questionTypesGuide + `

Identify the question text, options, correct answers, and any explanation. Preserve formatting. Return ONLY a valid JSON array.`

const topicPromptTemplate = `You are an expert exam author. Write {{COUNT}} practice exam questions about the following topic, mixing question types where the topic allows it, each with a short explanation.

` + questionTypesGuide + `

Topic:
---
{{TOPIC}}
---

Return ONLY a valid JSON array of question objects.`

func textPrompt(text string) string {
	return strings.Replace(textPromptTemplate, "{{TEXT_CONTENT}}", text, 1)
}

func topicPrompt(topic string, count int) string {
	return strings.NewReplacer("{{COUNT}}", strconv.Itoa(count), "{{TOPIC}}", topic).Replace(topicPromptTemplate)
}
