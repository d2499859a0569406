package router

import "fmt"

// routingPrompt builds the classification prompt enumerating the available
// capabilities, their applicability heuristics, and the index status.
func routingPrompt(query string, hasDocs bool) string {
	docStatus := "NOT AVAILABLE (no documents indexed)"
	if hasDocs {
		docStatus = "AVAILABLE with indexed documents"
	}

	return fmt.Sprintf(`You are a routing agent that decides which retrieval capabilities should handle a user query.

Available capabilities:
1. DOC_SEARCH - Retrieves information from indexed documents (knowledge base)
   - Use when: the query asks about specific documents, requires domain knowledge from the knowledge base, or asks to summarize a document
   - Status: %s

2. WEB_SEARCH - Searches the web for current information
   - Use when: the query needs recent/current information, news, prices, real-time data
   - Use when: the query explicitly mentions "search the web" or "find online"
   - Status: AVAILABLE

3. PAPER_SEARCH - Searches academic papers
   - Use when: the query mentions papers, research, publications, arxiv, scientific studies
   - Status: AVAILABLE

ROUTING RULES:
- If the query mentions "search web", "google", "online" -> ALWAYS use WEB_SEARCH
- If the query asks for "price", "latest", "recent", "current", "today" -> use WEB_SEARCH
- If the query asks to "summarize document" or says "according to the document" -> use DOC_SEARCH (if available)
- If the query mentions "paper", "research", "arxiv" -> use PAPER_SEARCH
- You can select MULTIPLE capabilities if needed
- If DOC_SEARCH is not available, use WEB_SEARCH for factual questions
- When in doubt about current info -> use WEB_SEARCH

User Query: %q

Respond in this EXACT format:
AGENTS: [capability names separated by commas, e.g., WEB_SEARCH, PAPER_SEARCH]
CONFIDENCE: [number between 0.0 and 1.0]
RATIONALE: [one sentence explaining why these capabilities were chosen]`, docStatus, query)
}
