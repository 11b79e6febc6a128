package core

// Keyword tables used by the Extractor. Order matters: categories and topics are
// reported in table order, and intent rules are evaluated top to bottom.

const (
	IntentDailyGoals       = "daily_goals"
	IntentRoadmapRequest   = "roadmap_request"
	IntentJobSearch        = "job_search"
	IntentSkillDevelopment = "skill_development"
	IntentInterviewPrep    = "interview_prep"
	IntentSalaryInquiry    = "salary_inquiry"
	IntentCareerTransition = "career_transition"
	IntentGeneralGuidance  = "general_guidance"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"

	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type keywordGroup struct {
	Name     string
	Keywords []string
}

// intentRule matches when every clause has at least one keyword present.
type intentRule struct {
	Intent  string
	Clauses [][]string
}

var intentRules = []intentRule{
	{IntentDailyGoals, [][]string{{"today"}, {"goal", "plan"}}},
	{IntentDailyGoals, [][]string{{"daily"}, {"goal", "task"}}},
	{IntentDailyGoals, [][]string{{"what should i do today"}}},
	{IntentDailyGoals, [][]string{{"today's"}, {"goal"}}},
	{IntentRoadmapRequest, [][]string{{"roadmap", "learning path"}}},
	{IntentJobSearch, [][]string{{"job", "career opportunity"}}},
	{IntentSkillDevelopment, [][]string{{"skill", "learn"}}},
	{IntentInterviewPrep, [][]string{{"interview", "preparation"}}},
	{IntentSalaryInquiry, [][]string{{"salary", "compensation"}}},
	{IntentCareerTransition, [][]string{{"transition", "switch"}}},
}

var skillCategories = []keywordGroup{
	{"programming", []string{"python", "javascript", "java", "c++", "go", "rust", "typescript", "php", "ruby", "swift", "kotlin"}},
	{"webdev", []string{"react", "vue", "angular", "node.js", "express", "next.js", "svelte", "html", "css", "sass"}},
	{"datascience", []string{"machine learning", "data science", "pandas", "numpy", "matplotlib", "scikit-learn", "tensorflow", "pytorch"}},
	{"cloud", []string{"aws", "azure", "google cloud", "docker", "kubernetes", "terraform", "serverless"}},
	{"databases", []string{"sql", "postgresql", "mongodb", "mysql", "redis", "elasticsearch"}},
	{"tools", []string{"git", "jira", "figma", "tableau", "power bi", "jenkins", "github actions"}},
}

var topicKeywords = []keywordGroup{
	{"Data Science", []string{"data science", "machine learning", "analytics", "statistics"}},
	{"Web Development", []string{"web development", "frontend", "backend", "full stack"}},
	{"Cloud Computing", []string{"cloud", "aws", "azure", "devops"}},
	{"Mobile Development", []string{"mobile", "ios", "android", "react native"}},
	{"Career Planning", []string{"career", "job search", "interview", "resume"}},
	{"Skills Development", []string{"skills", "learning", "certification", "course"}},
}

var certificationKeywords = []string{
	"certification", "certificate", "certified", "aws certified", "google certified", "microsoft certified",
}

var (
	positiveWords = []string{"excited", "interested", "passionate", "love", "enjoy", "motivated", "eager"}
	negativeWords = []string{"struggling", "difficult", "confused", "stuck", "frustrated", "overwhelmed", "lost"}
	neutralWords  = []string{"help", "advice", "guidance", "information", "learn", "understand"}
)

var urgentWords = []string{"urgent", "asap", "immediately", "quickly", "soon", "deadline"}

var (
	mediumUrgencyWords = []string{"when", "how long"}
	beginnerWords      = []string{"beginner", "new to", "just started"}
	advancedWords      = []string{"experienced", "senior", "advanced"}
)
