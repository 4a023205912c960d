package reasoning

// Prompt templates for the four-step chain. Each step asks for a JSON
// object so the response can be parsed strictly; a parse failure falls
// back to that step's defaults.

const analyzeRequestPrompt = `Analyze the following user request.

Request: %s

Respond with a JSON object:
{
  "intent": "short label for what the user wants",
  "domain": "subject area, e.g. technology, science, general",
  "complexity": "low, medium or high",
  "keywords": ["up to 5 keywords"]
}`

const evaluateKnowledgePrompt = `Evaluate whether the reference information below is sufficient to answer the request.

Request: %s

Reference information:
%s

Respond with a JSON object:
{
  "sufficiency": "sufficient, partial or insufficient",
  "gaps": ["missing aspects, if any"],
  "reliability": "low, medium or high"
}`

const extractKeyPointsPrompt = `Extract the key points needed to answer the request.

Request: %s
Intent: %s
Domain: %s

Reference information:
%s

Respond with a JSON object:
{
  "key_points": [
    {"point": "the point", "importance": 1, "relevance": 1}
  ]
}
Order points from most to least important.`

const planResponsePrompt = `Plan the response to the request below.

Request: %s
Intent: %s
Complexity: %s

Key points:
%s

Respond with a JSON object:
{
  "format": "text, markdown, json, code or table",
  "tone": "neutral, formal, conversational or technical",
  "structure": "default, step_by_step or sectioned",
  "sections": ["section titles, if sectioned"]
}`
