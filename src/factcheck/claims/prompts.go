package claims

const extractPrompt = `Analyze the provided text and extract 4-6 specific factual claims that can be verified.

For each claim:
1. Extract the exact statement from the text that can be verified as true or false
2. Make sure these are substantive factual claims, not opinions or subjective statements
3. Focus on claims that would be important for readers to know the accuracy of
4. IMPORTANT: Add sufficient context to each claim to make it clear what subject is being referenced
5. Include the subject of the claim explicitly (e.g., "Frogfish have X" not just "They have X")
6. If the claim refers to a specific species, person or place, name it in the claim

Return ONLY a JSON array in this exact format:
[
  {
    "claim": "The exact claim from the text with necessary context",
    "context": "A brief note explaining what this claim is about and any necessary context for understanding it",
    "search_query": "Suggested search terms to verify this claim"
  }
]

Do not attempt to verify the claims yourself. Just identify and contextualize them for verification.`

const factualPrompt = `Your task is to identify factual claims in the following message that should be verified.
Only extract specific, verifiable factual assertions - NOT opinions, personal experiences, or hypotheticals.

For each factual claim you identify:
1. Extract the exact statement that contains the factual assertion
2. Make sure it is something that can be objectively verified through research
3. Format each extraction as a search query that would be effective for fact-checking

Return your response in this exact JSON format:
{
  "factual_claims": [
    {
      "claim": "The exact factual claim from the text",
      "search_query": "An effective search query to verify this claim"
    }
  ]
}

If there are no verifiable factual claims, return:
{
  "factual_claims": []
}

Remember: Focus only on FACTUAL claims that can be objectively verified through research.`
