package domain

// Placeholder answers used when the model gives fewer answers than questions.
const (
	// NoInformationAnswer pads structured responses that are short.
	NoInformationAnswer = "Unable to find relevant information in the provided context."

	// UnparsedAnswer pads responses recovered by line-based parsing.
	UnparsedAnswer = "Unable to process this question due to response parsing issues."
)

// SynthesisErrorAnswer is the per-question answer when the model call fails.
func SynthesisErrorAnswer(err error) string {
	return "Error: " + err.Error()
}

// RiskCategory is one entry in the risk checklist.
type RiskCategory struct {
	// Name is the short category label.
	Name string

	// Description tells the model what to look for.
	Description string
}

// RiskFinding is a clause matched by a risk scan.
type RiskFinding struct {
	// Category is the matched RiskCategory name.
	Category string

	// Quote is the verbatim clause from the document.
	Quote string

	// Explanation describes why the clause is a risk.
	Explanation string
}

// DefaultRiskChecklist returns the built-in risk categories in scan order.
func DefaultRiskChecklist() []RiskCategory {
	return []RiskCategory{
		{
			Name:        "Automatic Renewal",
			Description: "The agreement renews automatically unless the customer cancels within a window.",
		},
		{
			Name:        "Limitation of Liability",
			Description: "The provider caps or excludes its liability for damages, losses or failures.",
		},
		{
			Name:        "Arbitration and Class Action Waiver",
			Description: "Disputes must go to binding arbitration or the customer waives class actions or jury trial.",
		},
		{
			Name:        "Unilateral Amendment",
			Description: "The provider may change terms, prices or coverage without the customer's consent.",
		},
		{
			Name:        "Termination Penalties",
			Description: "Cancelling early triggers fees, forfeitures or loss of benefits.",
		},
		{
			Name:        "Indemnification",
			Description: "The customer must indemnify or hold harmless the provider.",
		},
		{
			Name:        "Data Sharing",
			Description: "Personal data may be shared with or sold to third parties.",
		},
	}
}
