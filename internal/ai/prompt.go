package ai

import (
	"encoding/json"
	"fmt"
	"goal-navigator/internal/entity"
	"strings"
)

const systemPrompt = `You are a web navigation agent. You move a real browser toward a user's goal one action at a time.

Each step you receive:
1. The current URL, the goal and the step number
2. A JSON list of interactive elements, ordered by relevance. Each element has an "id", its tag, text, attributes, position and a "hierarchy_level" from 1 (most relevant) to 5 (least relevant)
3. Optionally a screenshot of the current viewport

Rules:
- ALWAYS accept cookie banners and privacy prompts first. Elements flagged "cookie_consent" are such prompts
- Prefer elements with a low hierarchy_level
- Choose exactly ONE element and ONE action per step
- For searches, type the query into the search field. Do not click the same search field repeatedly; look for a submit button instead
- If an action did not work in a previous step, try a different element
- Never invent element ids; use the "id" values you were given

Respond ONLY with a JSON object with these fields:
- "action": "click" or "type"
- "element_id": the numeric id of the element
- "element_description": what the element is and its purpose, e.g. "search input field" or "login button"
- "input_text": text to type (only for "type")
- "input_type": the kind of field for "type" actions: "text", "search", "email" or "password"
- "reasoning": short explanation of the choice
- "goal_achieved": true if the goal is already complete on the current page
- "confidence": 0.0 to 1.0, how confident you are that the goal is achieved`

// userMessage renders one step's observation. Sensitive values never reach it:
// the scan carries no field values.
func userMessage(req entity.DecisionRequest) (string, error) {
	scan := req.Scan
	if scan == nil {
		scan = &entity.ScanResult{URL: req.URL}
	}

	elements, err := json.Marshal(scan)
	if err != nil {
		return "", fmt.Errorf("marshal scan: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current URL: %s\n", req.URL)
	fmt.Fprintf(&b, "Step: %d of %d\n", req.Step, req.MaxSteps)
	fmt.Fprintf(&b, "Goal: %s\n", req.Goal)

	if req.LastOutcome != "" {
		fmt.Fprintf(&b, "Previous step: %s\n", req.LastOutcome)
	}

	if scan.Len() == 0 {
		b.WriteString("No interactive elements were found on this page.\n")
	}

	b.WriteString("Elements:\n")
	b.Write(elements)

	return b.String(), nil
}
