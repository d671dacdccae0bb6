package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepmed/prepmed-backend/internal/encounter"
	"github.com/prepmed/prepmed-backend/internal/model"
)

const caseSystemPrompt = `You are a medical educator writing interactive clinical case simulations for postgraduate exam preparation. Respond with a single JSON object:
{
  "title": string,
  "subject": string,
  "description": string,
  "steps": [
    {
      "title": string,
      "prompt": string,
      "action": string,
      "options": [{"label": string, "next_step": number}]
    }
  ]
}
Steps are referenced by zero-based index. Step 0 is the presentation. Use next_step 100 for a decision that resolves the case correctly and 99 for a decision that harms the patient. Wrong-but-recoverable decisions may loop back to an earlier step. Write 4 to 6 steps with 2 to 4 options each.`

// GenerateCase asks the model for a clinical case on the given subject and
// normalizes it into the engine's strict schema.
func (c *Client) GenerateCase(ctx context.Context, subject, difficulty string) (*encounter.Case, error) {
	user := fmt.Sprintf("Write a %s-level clinical case in %s.", orDefault(difficulty, "moderate"), orDefault(subject, "internal medicine"))
	raw, err := c.ChatJSON(ctx, []Message{
		{Role: "system", Content: caseSystemPrompt},
		{Role: "user", Content: user},
	})
	if err != nil {
		return nil, err
	}

	cs, err := encounter.Normalize(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("subject", subject).Msg("Generated case failed normalization")
		return nil, err
	}
	if cs.Subject == "" {
		cs.Subject = subject
	}
	cs.Source = "ai"
	cs.Difficulty = difficulty
	return cs, nil
}

const deckSystemPrompt = `You are a medical educator creating spaced-repetition flashcards for postgraduate exam preparation. Respond with a single JSON object:
{"cards": [{"cue": string, "answer": string, "high_yield_note": string, "tags": [string]}]}
Cues are short recall prompts; answers are concise and factual; high_yield_note carries the one exam pearl worth remembering.`

type deckPayload struct {
	Cards []model.Flashcard `json:"cards"`
}

// GenerateDeck asks the model for count flashcards on a topic.
func (c *Client) GenerateDeck(ctx context.Context, topic string, count int) ([]model.Flashcard, error) {
	if count <= 0 {
		count = 10
	}
	raw, err := c.ChatJSON(ctx, []Message{
		{Role: "system", Content: deckSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Create %d flashcards on: %s", count, topic)},
	})
	if err != nil {
		return nil, err
	}

	var payload deckPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if len(payload.Cards) == 0 {
		return nil, ErrEmptyCompletion
	}
	return payload.Cards, nil
}

const plannerSystemPrompt = `You are a study coach for medical postgraduate entrance exams. Given a student's recent performance, produce a one-week study plan. Respond with a single JSON object:
{"focus_areas": [string], "plan": [{"day": string, "activities": [string]}], "advice": string}`

// StudyPlan is the structured output of the planner.
type StudyPlan struct {
	FocusAreas []string `json:"focus_areas"`
	Plan       []struct {
		Day        string   `json:"day"`
		Activities []string `json:"activities"`
	} `json:"plan"`
	Advice string `json:"advice"`
}

// GeneratePlan builds a weekly plan from a performance summary the caller
// has already serialized.
func (c *Client) GeneratePlan(ctx context.Context, performanceSummary string) (*StudyPlan, error) {
	raw, err := c.ChatJSON(ctx, []Message{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: performanceSummary},
	})
	if err != nil {
		return nil, err
	}

	var plan StudyPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &plan, nil
}

const tutorSystemPrompt = `You are a patient, precise medical tutor helping a student prepare for postgraduate entrance exams. Explain concepts clearly, cite the underlying mechanism, and keep answers focused on what is examinable. If the student is wrong, say so directly and explain why.`

// TutorReply continues a tutoring conversation. history is the prior turns,
// oldest first, without the system prompt.
func (c *Client) TutorReply(ctx context.Context, history []Message) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: "system", Content: tutorSystemPrompt})
	messages = append(messages, history...)
	return c.Chat(ctx, messages)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
