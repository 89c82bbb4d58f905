package iterate

import "fmt"

// Stage prompts. Their opening tokens are part of the externally
// observable stage-prompt-dispatch contract: test doubles key off these
// prefixes, so they must not change.

func assessPrompt(folder string) string {
	return fmt.Sprintf("Assess the project in %s against your principles. Identify the principle "+
		"that it is most violating, and describe how we should correct it.", folder)
}

func namePrompt() string {
	return "Output ONLY a short kebab-case filename (no extension, no explanation) that summarizes " +
		"the assessment above in 2-5 words."
}

func planPrompt(assessment string) string {
	return "Based on the following assessment, write a concrete, actionable plan to correct the " +
		"identified violation.\n\n" + assessment
}

func executePrompt(folder, assessment, plan string) string {
	return fmt.Sprintf("Execute the following plan to improve the project in %s.\n\nWhy:\n%s\n\nPlan:\n%s",
		folder, assessment, plan)
}

func retryPrompt(plan string, failedGates []string) string {
	s := "The previous execution introduced quality gate failures. Fix the issues so the gates pass.\n\n" +
		"## Original Plan\n" + plan + "\n\n## Failed Gates\n"
	for _, g := range failedGates {
		s += g
	}
	return s
}

func failedGateBlock(name, output string) string {
	return fmt.Sprintf("### Gate: %s\n\n%s\n\n", name, output)
}
