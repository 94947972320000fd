package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"tracer/internal/findings"
)

// Fallback texts shown to the user when a model call fails.
const (
	AnalysisFallback = "An error occurred while analyzing the data. Please check the logs for details."
	ChatApology      = "Sorry, I encountered an error. Please try again."
)

const analysisPrompt = `You are an expert hospital quality assurance analyst.
Analyze the following compliance findings data, which is a filtered subset from a larger report.

Data:
%s

Provide a concise but insightful analysis covering these points:
1.  **Overall Summary:** Give a brief overview of the findings in this dataset.
2.  **Key Issues:** Identify the top 2-3 most critical or frequent issues based on 'Not Met' statuses.
3.  **Trends & Patterns:** Are there any noticeable trends? For example, are issues concentrated in specific departments or related to certain types of improvement?
4.  **Actionable Suggestions:** Based on your analysis, suggest 2 concrete, actionable improvements.

Format your response in clear, readable markdown with headings for each section.`

const chatInstruction = `You are a helpful AI assistant for analyzing hospital compliance data. The user has provided a dataset with the following structure: %s. Use the provided data to answer the user's questions concisely.`

const chatData = `

Data (first %d of %d findings):
%s`

const transcribePrompt = `Transcribe this audio recording verbatim. The speaker may use Thai or English; keep each language as spoken. Return only the transcript text without commentary or timestamps.`

// AnalysisPrompt renders the narrative analysis prompt for records.
func AnalysisPrompt(records []findings.Record, fields findings.Fields) (string, error) {
	payload, err := json.MarshalIndent(findings.AnalysisContext(records, fields), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode analysis context: %w", err)
	}
	return fmt.Sprintf(analysisPrompt, payload), nil
}

// ChatSystemInstruction renders the chat system instruction. The first
// projected row describes the dataset shape; all projected rows follow as data.
func ChatSystemInstruction(records []findings.Record, fields findings.Fields, limit int) (string, error) {
	rows := findings.ChatContext(records, fields, limit)
	example := []byte("{}")
	if len(rows) > 0 {
		var err error
		if example, err = json.Marshal(rows[0]); err != nil {
			return "", fmt.Errorf("encode chat example: %w", err)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, chatInstruction, example)
	if len(rows) > 0 {
		data, err := json.Marshal(rows)
		if err != nil {
			return "", fmt.Errorf("encode chat context: %w", err)
		}
		fmt.Fprintf(&b, chatData, len(rows), len(records), data)
	}
	return b.String(), nil
}
