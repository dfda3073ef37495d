package optimization

const (
	defaultSummary = "The resume was compared against the job posting. Review the suggestions below " +
		"to strengthen alignment with the role's requirements."
	singleSuggestionSummary = "The analysis returned a single targeted suggestion. Apply it and run the " +
		"optimization again for a complete review."
	defaultReason  = "Aligning this section with the job posting improves relevance for recruiters and ATS filters."
	defaultCurrent = "Not specified"
	defaultSection = "general"
)

var defaultKeywordMatches = []string{
	"communication",
	"teamwork",
	"problem solving",
	"project management",
	"leadership",
}

var defaultMissingKeywords = []string{
	"industry certifications",
	"domain expertise",
	"role-specific tools",
	"quantified achievements",
	"technical keywords from the posting",
}

// fallbackSuggestions pad an under-length suggestion list, in this order.
var fallbackSuggestions = []Suggestion{
	{
		Section:   "summary",
		Current:   "Current professional summary",
		Suggested: "Open the summary with the job title from the posting and the one achievement that best proves you can do it.",
		Reason:    "The summary is read first; matching the target role immediately improves recruiter and ATS relevance.",
		Priority:  PriorityHigh,
	},
	{
		Section:   "experience",
		Current:   "Current experience bullet points",
		Suggested: "Rewrite experience bullets as action plus measurable outcome, e.g. \"Reduced deployment time by 40% by automating releases\".",
		Reason:    "Quantified impact is more convincing than a list of responsibilities.",
		Priority:  PriorityHigh,
	},
	{
		Section:   "skills",
		Current:   "Current skills list",
		Suggested: "Reorder the skills list so the tools and technologies named in the job posting come first, using the posting's wording.",
		Reason:    "ATS filters match exact keywords; mirroring the posting's terms raises the match rate.",
		Priority:  PriorityMedium,
	},
	{
		Section:   "experience",
		Current:   "Current role descriptions",
		Suggested: "Highlight projects from your recent roles that mirror the responsibilities listed in the posting.",
		Reason:    "Showing directly comparable work makes the fit obvious to the hiring manager.",
		Priority:  PriorityMedium,
	},
	{
		Section:   "summary",
		Current:   "Current career objective",
		Suggested: "Close the summary with a sentence on what you want to deliver in this specific role.",
		Reason:    "A forward-looking statement tailored to the role shows genuine interest.",
		Priority:  PriorityLow,
	},
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
