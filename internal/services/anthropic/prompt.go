package anthropic

import "strings"

// TruncationMarker is appended when a transcript is cut to fit the model
// context budget.
const TruncationMarker = "\n\n[TRANSCRIPT TRUNCATED]"

const analysisTemplate = `You are an expert housing policy analyst reviewing a city council meeting transcript.

JURISDICTION: {jurisdiction}
MEETING TITLE: {title}
MEETING DATE: {date}

Analyze the following transcript and extract ALL affordable housing-related information.
Return your analysis as a single JSON object with exactly these keys:

{
  "housing_topics": ["list of housing topics discussed"],
  "policy_proposals": [
    {
      "type": "ordinance|resolution|amendment|motion|recommendation",
      "description": "what is being proposed",
      "status": "introduced|discussed|tabled|approved|denied|pending",
      "vote_result": "unanimous|split (X-Y)|voice vote|null"
    }
  ],
  "sentiment": {
    "overall": "supportive|opposed|mixed|neutral",
    "details": "brief summary of stakeholder positions",
    "public_comment_summary": "summary of public testimony if any"
  },
  "projects": [
    {
      "name": "project name if given",
      "address": "address or location",
      "units_total": null,
      "units_affordable": null,
      "affordability_level": "e.g. 60% AMI",
      "developer": "developer name if mentioned",
      "status": "proposed|under_review|approved|under_construction|completed"
    }
  ],
  "regulatory_changes": [
    {
      "type": "zoning|building_code|ordinance|policy",
      "description": "what changed or is proposed to change",
      "impact": "expected impact on housing"
    }
  ],
  "funding": [
    {
      "amount": "dollar amount as string",
      "source": "funding source",
      "purpose": "what the money is for",
      "status": "proposed|approved|allocated|disbursed"
    }
  ],
  "actions": [
    "list of concrete actions taken or scheduled (votes, next steps, deadlines)"
  ],
  "quotes": [
    {
      "speaker": "speaker name or role",
      "quote": "exact or near-exact quote",
      "context": "brief context for the quote"
    }
  ],
  "housing_relevance_score": 0.0,
  "summary": "2-3 paragraph executive summary of housing-related content"
}

IMPORTANT:
- housing_relevance_score should be 0.0-1.0 based on how much of the meeting focused on housing.
- If no housing topics are found, still return the JSON with empty lists and a low score.
- Be precise with dollar amounts and unit counts.
- Distinguish between motions, ordinances, and informal discussion.
- Identify speakers by name when possible, otherwise by role (councilmember, public commenter, staff).

TRANSCRIPT:
{transcript}
`

// BuildAnalysisPrompt renders the housing analysis prompt for a meeting.
// Transcripts longer than maxTranscriptChars are cut and marked so the
// model knows the text is incomplete.
func BuildAnalysisPrompt(jurisdiction, title, date, transcript string, maxTranscriptChars int) string {
	if maxTranscriptChars > 0 && len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars] + TruncationMarker
	}
	replacer := strings.NewReplacer(
		"{jurisdiction}", jurisdiction,
		"{title}", title,
		"{date}", date,
		"{transcript}", transcript,
	)
	return replacer.Replace(analysisTemplate)
}
