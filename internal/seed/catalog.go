package seed

import "github.com/pathfinder-hq/pathfinder-backend/internal/types"

// CompetencyCatalog returns the built-in CPA competency map seed set: six
// technical areas and five enabling competencies. Codes are the business
// keys the compliance rules and reports refer to.
func CompetencyCatalog() []*types.Competency {
	return []*types.Competency{
		{
			Code:         "FR1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "FR",
			AreaName:     "Financial Reporting",
			SubCode:      "FR1",
			SubName:      "Financial Reporting Needs and Systems",
			Description:  "Assesses financial reporting needs and prepares financial statements and supporting disclosures under the applicable framework.",
			EVRRelevance: types.EVRRelevanceHigh,
			Level1Criteria: "Prepares journal entries, account reconciliations and working papers supporting financial statement balances under supervision.",
			Level2Criteria: "Prepares complete financial statements with note disclosure, researches accounting treatment for non-routine transactions and recommends adjustments.",
			GuidingQuestions: "Did you prepare or analyze financial statements? Did you record journal entries or perform account reconciliations? Did you research the accounting treatment for a transaction under IFRS or ASPE? Did you draft note disclosure or review supporting working papers for reporting balances?",
		},
		{
			Code:         "MA1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "MA",
			AreaName:     "Management Accounting",
			SubCode:      "MA1",
			SubName:      "Planning, Budgeting and Forecasting",
			Description:  "Develops budgets, forecasts and cost analyses that support management decision making.",
			EVRRelevance: types.EVRRelevanceMedium,
			Level1Criteria: "Assembles budget schedules and variance reports from operational data under direction.",
			Level2Criteria: "Builds budget and forecast models, analyzes variances against plan and advises management on corrective action.",
			GuidingQuestions: "Did you build or maintain a budget or forecast? Did you analyze variances between actual and planned results? Did you develop costing or profitability analyses for products or departments? Did you present budget findings to management?",
		},
		{
			Code:         "AA1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "AA",
			AreaName:     "Audit and Assurance",
			SubCode:      "AA1",
			SubName:      "Internal Control Assessment",
			Description:  "Evaluates the design and operating effectiveness of internal controls and reports control deficiencies.",
			EVRRelevance: types.EVRRelevanceHigh,
			Level1Criteria: "Performs assigned audit fieldwork procedures, tests internal controls and documents exceptions in working papers.",
			Level2Criteria: "Plans and executes control testing across an audit cycle, evaluates identified control deficiencies for severity and drafts the management letter points.",
			GuidingQuestions: "Did you perform audit fieldwork or execute audit procedures? Did you test internal controls over financial processes? Did you identify or evaluate control deficiencies? Did you document testing results in working papers? Did you draft management letter points communicating deficiencies to management?",
		},
		{
			Code:         "TX1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "TX",
			AreaName:     "Taxation",
			SubCode:      "TX1",
			SubName:      "Corporate Taxation",
			Description:  "Prepares corporate income tax provisions and returns and researches tax compliance obligations.",
			EVRRelevance: types.EVRRelevanceHigh,
			Level1Criteria: "Prepares corporate income tax returns and supporting schedules from trial balance information under supervision.",
			Level2Criteria: "Prepares complex corporate tax provisions, researches legislation for filing positions and advises on tax planning opportunities.",
			GuidingQuestions: "Did you prepare corporate income tax returns or provisions? Did you calculate taxable income adjustments or capital cost allowance schedules? Did you research tax legislation for a filing position? Did you respond to queries from tax authorities?",
		},
		{
			Code:         "FN1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "FN",
			AreaName:     "Finance",
			SubCode:      "FN1",
			SubName:      "Financial Analysis and Treasury",
			Description:  "Performs financial analysis, cash flow projections and capital investment evaluations.",
			EVRRelevance: types.EVRRelevanceMedium,
			Level1Criteria: "Prepares cash flow projections and ratio analyses from financial data under direction.",
			Level2Criteria: "Evaluates capital investment proposals, models financing alternatives and recommends treasury actions.",
			GuidingQuestions: "Did you prepare cash flow projections or working capital analyses? Did you evaluate a capital investment or financing proposal? Did you perform ratio or trend analysis of financial performance? Did you model financing alternatives for a decision?",
		},
		{
			Code:         "SP1",
			Category:     types.CompetencyCategoryTechnical,
			AreaCode:     "SP",
			AreaName:     "Strategy and Governance",
			SubCode:      "SP1",
			SubName:      "Governance and Risk Assessment",
			Description:  "Assesses governance structures and enterprise risks and contributes to strategy development.",
			EVRRelevance: types.EVRRelevanceLow,
			Level1Criteria: "Gathers information supporting risk assessments or governance reviews under direction.",
			Level2Criteria: "Leads risk assessment workstreams, evaluates mitigation strategies and reports conclusions to governance bodies.",
			GuidingQuestions: "Did you contribute to an enterprise risk assessment? Did you evaluate governance structures or board reporting? Did you analyze strategic alternatives for an organization? Did you report risk findings to a governance body?",
		},
		{
			Code:         "EN1",
			Category:     types.CompetencyCategoryEnabling,
			AreaCode:     "EN",
			AreaName:     "Enabling Competencies",
			SubCode:      "EN1",
			SubName:      "Professional and Ethical Behaviour",
			Description:  "Applies the profession's ethical standards and acts with integrity in professional judgments.",
			EVRRelevance: types.EVRRelevanceHigh,
			Level1Criteria: "Recognizes ethical implications in assigned work and escalates concerns appropriately.",
			Level2Criteria: "Resolves ethical dilemmas using the profession's code of conduct and documents the reasoning behind judgments.",
			GuidingQuestions: "Did you face an ethical dilemma or independence threat in your work? Did you apply the code of professional conduct to resolve a concern? Did you escalate an integrity issue and document your reasoning?",
		},
		{
			Code:         "EN2",
			Category:     types.CompetencyCategoryEnabling,
			AreaCode:     "EN",
			AreaName:     "Enabling Competencies",
			SubCode:      "EN2",
			SubName:      "Problem-Solving and Decision-Making",
			Description:  "Structures problems, analyzes alternatives and supports decisions with evidence.",
			EVRRelevance: types.EVRRelevanceHigh,
			Level1Criteria: "Breaks assigned problems into components and gathers relevant evidence under direction.",
			Level2Criteria: "Frames ambiguous problems independently, weighs alternatives against criteria and recommends a defensible course of action.",
			GuidingQuestions: "Did you structure an ambiguous problem into manageable components? Did you gather and weigh evidence across alternatives? Did you recommend a course of action and defend it?",
		},
		{
			Code:         "EN3",
			Category:     types.CompetencyCategoryEnabling,
			AreaCode:     "EN",
			AreaName:     "Enabling Competencies",
			SubCode:      "EN3",
			SubName:      "Communication",
			Description:  "Communicates findings clearly in written deliverables and verbal presentations tailored to the audience.",
			EVRRelevance: types.EVRRelevanceMedium,
			Level1Criteria: "Prepares clear written summaries of assigned work for internal review.",
			Level2Criteria: "Tailors written deliverables and presentations to diverse audiences and handles questions on the content.",
			GuidingQuestions: "Did you write reports, memos or summaries of your analysis? Did you present findings to colleagues, management or clients? Did you adapt your message for a non-specialist audience?",
		},
		{
			Code:         "EN4",
			Category:     types.CompetencyCategoryEnabling,
			AreaCode:     "EN",
			AreaName:     "Enabling Competencies",
			SubCode:      "EN4",
			SubName:      "Self-Management",
			Description:  "Manages own workload, deadlines and professional development.",
			EVRRelevance: types.EVRRelevanceLow,
			Level1Criteria: "Manages assigned tasks to deadlines and seeks feedback on performance.",
			Level2Criteria: "Balances competing priorities across engagements, anticipates bottlenecks and pursues development goals proactively.",
			GuidingQuestions: "Did you manage competing deadlines across engagements or projects? Did you seek and act on feedback about your performance? Did you set and pursue professional development goals?",
		},
		{
			Code:         "EN5",
			Category:     types.CompetencyCategoryEnabling,
			AreaCode:     "EN",
			AreaName:     "Enabling Competencies",
			SubCode:      "EN5",
			SubName:      "Teamwork and Leadership",
			Description:  "Works effectively in teams and takes on leadership of tasks or people.",
			EVRRelevance: types.EVRRelevanceMedium,
			Level1Criteria: "Contributes reliably to team deliverables and supports colleagues on shared tasks.",
			Level2Criteria: "Coordinates the work of others, reviews junior colleagues' deliverables and resolves team conflicts.",
			GuidingQuestions: "Did you coordinate or review the work of other team members? Did you lead a task, workstream or meeting? Did you help resolve a conflict or coach a junior colleague?",
		},
	}
}
