package core

import (
	"fmt"
	"strings"

	"github.com/careerpilot/career-assistant/internal/store"
)

// MockResponder produces canned, profile-personalized replies keyed by intent.
// It is used when no upstream credential is configured or every attempt failed.
type MockResponder struct{}

func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

// Generate never fails: missing profile fields render placeholder text.
func (m *MockResponder) Generate(intent string, profile *UserProfile) string {
	if profile == nil {
		profile = &UserProfile{}
	}
	switch intent {
	case IntentRoadmapRequest:
		return roadmapResponse(profile)
	case IntentDailyGoals:
		return dailyGoalsResponse(profile)
	case IntentJobSearch:
		return jobSearchResponse(profile)
	case IntentSkillDevelopment:
		return skillDevelopmentResponse(profile)
	case IntentInterviewPrep:
		return interviewPrepResponse(profile)
	case IntentSalaryInquiry:
		return salaryResponse(profile)
	case IntentCareerTransition:
		return careerTransitionResponse(profile)
	default:
		return generalGuidanceResponse(profile)
	}
}

func displayName(p *UserProfile) string {
	return orDefault(p.Name, "there")
}

func firstSkillNames(skills []store.Skill, n int) string {
	if len(skills) > n {
		skills = skills[:n]
	}
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func firstGoalTitles(goals []store.CareerGoal, n int) string {
	if len(goals) > n {
		goals = goals[:n]
	}
	titles := make([]string, 0, len(goals))
	for _, g := range goals {
		titles = append(titles, g.Title)
	}
	return strings.Join(titles, ", ")
}

func dailyGoalsResponse(p *UserProfile) string {
	streakLine := "Today is a perfect day to start a new learning streak!"
	if p.Streak > 0 {
		streakLine = fmt.Sprintf("Amazing! You're on a **%d-day learning streak**! Let's keep it going.", p.Streak)
	}
	skillsLine := "Let's start building your skill foundation:"
	if len(p.Skills) > 0 {
		skillsLine = fmt.Sprintf("Based on your current skills (%s), I suggest:", firstSkillNames(p.Skills, 3))
	}
	goalsLine := "Consider setting a specific career goal today!"
	if len(p.CareerGoals) > 0 {
		goalsLine = fmt.Sprintf("Your career goals: %s", firstGoalTitles(p.CareerGoals, 2))
	}

	return fmt.Sprintf(`# 🎯 Your Daily Goals, %s!

Great to see you staying focused on your career journey! Here's what I recommend for today:

## **Today's Priority Actions:**

### **🔥 Maintain Your Streak**
%s

### **📚 Skill Development Focus**
%s

- **Practice for 30 minutes** on your weakest skill
- **Read one article** about industry trends
- **Complete one coding challenge** or tutorial

### **🎯 Goal Progress Check**
%s

**Today's Action:** Take one small step toward your primary goal.

## **💡 Quick Win Suggestions:**
1. **Update your LinkedIn** with a recent accomplishment
2. **Connect with one professional** in your target field
3. **Review and practice** one technical concept

What specific area would you like to focus on today? I can create a detailed daily plan for you! 🚀`,
		displayName(p), streakLine, skillsLine, goalsLine)
}

func roadmapResponse(p *UserProfile) string {
	return fmt.Sprintf(`# 🗺️ Personalized Career Roadmap for %s

Based on your profile and goals, here's your structured learning path:

## **Phase 1: Foundation Building (Weeks 1-4)**
- **Core Skills Assessment**: Evaluate your current skill level
- **Learning Resources**: Identify the best platforms for your learning style
- **Goal Setting**: Define specific, measurable career objectives

## **Phase 2: Skill Development (Weeks 5-12)**
- **Technical Skills**: Focus on in-demand technologies in your field
- **Soft Skills**: Communication, problem-solving, and teamwork
- **Portfolio Projects**: Build 2-3 showcase projects

## **Phase 3: Professional Growth (Weeks 13-24)**
- **Networking**: Connect with industry professionals
- **Certifications**: Pursue relevant industry certifications
- **Job Applications**: Start applying to target positions

## **Next Steps:**
1. **Immediate Action**: Choose one skill to focus on this week
2. **Weekly Goals**: Set specific learning targets
3. **Progress Tracking**: Use our dashboard to monitor advancement
4. **Daily Practice**: Maintain your learning streak!

Would you like me to create a more detailed roadmap for a specific role or technology?`, displayName(p))
}

func jobSearchResponse(p *UserProfile) string {
	intro := ""
	if len(p.Skills) > 0 {
		intro = fmt.Sprintf("Great! With your skills in %s, you're well-positioned for opportunities.", firstSkillNames(p.Skills, 3))
	}
	return fmt.Sprintf(`# 💼 Job Search Strategy for %s

%s

## **Optimized Job Search Approach:**

### **1. Profile Optimization**
- **Resume Enhancement**: Tailor for each application
- **LinkedIn Profile**: Professional headline and summary
- **Portfolio Showcase**: Highlight your best work

### **2. Target Job Identification**
- **Role Research**: Understand job requirements thoroughly
- **Company Analysis**: Research potential employers
- **Salary Benchmarking**: Know your market value

### **3. Application Strategy**
- **Quality over Quantity**: Focus on relevant positions
- **Cover Letter Customization**: Address specific job requirements
- **Follow-up Process**: Professional communication timeline

### **4. Interview Preparation**
- **Technical Skills**: Practice coding/technical challenges
- **Behavioral Questions**: Prepare STAR method responses
- **Company Knowledge**: Research thoroughly before interviews

### **Recommended Actions:**
1. **Update your profile** with latest skills and projects
2. **Set up job alerts** for your target roles
3. **Network actively** through industry events and online communities

Let me know your target role, and I can provide more specific guidance!`, displayName(p), intro)
}

func skillDevelopmentResponse(p *UserProfile) string {
	intro := "Let's start building your skill portfolio!"
	if n := len(p.Skills); n > 0 {
		intro = fmt.Sprintf("You already have %d skills in your profile - that's a great foundation!", n)
	}
	return fmt.Sprintf(`# 📚 Skill Development Plan for %s

%s

## **Strategic Learning Approach:**

### **1. Skill Gap Analysis**
- **Current Skills Assessment**: Evaluate your existing capabilities
- **Market Demand Research**: Identify high-demand skills in your field
- **Priority Ranking**: Focus on skills with highest ROI

### **2. Learning Path Design**
- **Structured Curriculum**: Follow a logical learning sequence
- **Hands-on Practice**: Apply knowledge through projects
- **Community Engagement**: Join relevant developer/professional communities

### **3. Progress Tracking**
- **Milestone Setting**: Define clear learning objectives
- **Regular Assessment**: Test your knowledge regularly
- **Portfolio Updates**: Document your learning journey

### **Recommended Learning Resources:**
- **Online Platforms**: Coursera, Udemy, Pluralsight
- **Practice Sites**: LeetCode, HackerRank, Kaggle
- **Documentation**: Official docs and tutorials
- **Community**: Stack Overflow, Reddit, Discord groups

### **Action Plan:**
1. **Choose 1-2 skills** to focus on initially
2. **Dedicate 1-2 hours daily** to consistent learning
3. **Build a project** to apply new skills practically

What specific skill would you like to develop? I can provide a detailed learning roadmap!`, displayName(p), intro)
}

func interviewPrepResponse(p *UserProfile) string {
	return fmt.Sprintf(`# 🎯 Interview Preparation Guide for %s

With your **%s** of experience, here's a tailored preparation strategy:

## **Comprehensive Interview Strategy:**

### **1. Technical Preparation**
- **Core Concepts**: Review fundamental principles in your field
- **Coding Practice**: Solve problems on platforms like LeetCode
- **System Design**: Understand scalability and architecture concepts
- **Portfolio Review**: Be ready to discuss your projects in detail

### **2. Behavioral Interview Prep**
- **STAR Method**: Structure your responses (Situation, Task, Action, Result)
- **Common Questions**: Prepare for "Tell me about yourself" and similar
- **Company Research**: Understand their values, products, and culture
- **Questions to Ask**: Prepare thoughtful questions about the role and company

### **3. Mock Interview Practice**
- **Technical Rounds**: Practice coding problems under time pressure
- **Behavioral Rounds**: Record yourself answering common questions
- **Peer Practice**: Conduct mock interviews with friends or colleagues

### **4. Day-of-Interview Tips**
- **Preparation**: Research the interviewers on LinkedIn
- **Materials**: Bring copies of resume, portfolio, and questions
- **Mindset**: Stay confident and view it as a conversation

### **Timeline (2-3 weeks before interview):**
- **Week 1**: Technical skill review and coding practice
- **Week 2**: Behavioral prep and company research
- **Week 3**: Mock interviews and final preparations

Need help with specific interview types or technical topics? Let me know!`, displayName(p), orDefault(p.Experience, "0-1 years"))
}

func salaryResponse(p *UserProfile) string {
	return fmt.Sprintf(`# 💰 Salary Negotiation & Market Analysis for %s

## **Salary Research & Negotiation Strategy:**

### **1. Market Research**
- **Salary Benchmarking**: Use Glassdoor, PayScale, levels.fyi
- **Location Factors**: Consider cost of living adjustments
- **Experience Level**: Align expectations with your skill level
- **Industry Standards**: Research specific industry compensation trends

### **2. Total Compensation Analysis**
- **Base Salary**: Fixed annual compensation
- **Benefits Package**: Health insurance, retirement plans, PTO
- **Equity/Stock Options**: Long-term value potential
- **Professional Development**: Training budgets, conference attendance

### **3. Negotiation Preparation**
- **Value Proposition**: Document your unique skills and achievements
- **Market Data**: Present research-backed salary ranges
- **Flexibility**: Consider non-salary benefits if base pay is fixed
- **Timeline**: Understand when salary reviews typically occur

### **4. Negotiation Best Practices**
- **Professional Approach**: Maintain positive, collaborative tone
- **Specific Numbers**: Provide salary ranges rather than exact figures
- **Written Confirmation**: Get final agreements in writing
- **Relationship Focus**: Preserve working relationships throughout process

### **Salary Ranges by Experience Level:**
- **Entry Level (0-2 years)**: Focus on learning opportunities
- **Mid Level (3-5 years)**: Market rate with growth potential
- **Senior Level (5+ years)**: Premium for expertise and leadership

Would you like specific salary data for your target role and location?`, displayName(p))
}

func careerTransitionResponse(p *UserProfile) string {
	return fmt.Sprintf(`# 🔄 Career Transition Strategy for %s

As a **%s**, you have unique advantages in making this transition!

## **Strategic Career Change Approach:**

### **1. Transition Planning**
- **Skills Assessment**: Identify transferable skills from current role
- **Gap Analysis**: Determine what new skills you need to develop
- **Timeline Planning**: Create realistic transition timeline (6-18 months)
- **Financial Planning**: Prepare for potential income changes during transition

### **2. Skill Bridge Building**
- **Transferable Skills**: Highlight relevant experience from current field
- **New Skill Development**: Focus on high-impact skills for target role
- **Portfolio Creation**: Build projects that demonstrate new capabilities
- **Certification Pursuit**: Earn credentials in your target field

### **3. Network Development**
- **Industry Connections**: Attend meetups, conferences, online communities
- **Informational Interviews**: Learn from professionals in target field
- **Mentorship**: Find mentors who've made similar transitions
- **Professional Branding**: Update LinkedIn and other profiles

### **4. Transition Execution**
- **Gradual Transition**: Consider part-time or freelance work initially
- **Internal Opportunities**: Look for relevant projects in current company
- **Strategic Job Search**: Target roles that value your unique background
- **Story Development**: Craft compelling narrative for your career change

### **Common Transition Paths:**
- **Tech Transitions**: Business → Product Management → Tech Leadership
- **Data Transitions**: Any field → Data Analysis → Data Science
- **Consulting**: Industry Expert → Independent Consultant

### **Success Timeline:**
- **Months 1-3**: Skill development and network building
- **Months 4-6**: Portfolio creation and initial applications
- **Months 7-12**: Active job search and interviews

What specific career transition are you considering? I can provide more targeted advice!`, displayName(p), orDefault(p.Background, "professional"))
}

func generalGuidanceResponse(p *UserProfile) string {
	streakLine := "Ready to start your career journey?"
	if p.Streak > 0 {
		streakLine = fmt.Sprintf("🔥 Fantastic! You're on a %d-day learning streak!", p.Streak)
	}
	return fmt.Sprintf(`# 🎯 Welcome back, %s!

%s

## **How I Can Assist You:**

### **🗺️ Career Planning**
- Create customized learning roadmaps
- Identify skill gaps and development priorities
- Set realistic career goals and timelines

### **💼 Job Search Support**
- Optimize your resume and LinkedIn profile
- Provide interview preparation strategies
- Suggest relevant job opportunities

### **📚 Skill Development**
- Recommend learning resources and courses
- Design practice projects for your portfolio
- Track your progress and celebrate milestones

### **💰 Career Growth**
- Salary negotiation strategies
- Professional networking guidance
- Industry trend analysis and insights

## **To Get Started:**
1. **Tell me about your career goals** - What role are you targeting?
2. **Share your current situation** - What's your background and experience?
3. **Identify your challenges** - What specific help do you need?

## **Popular Topics I Can Help With:**
- "I want to become a Data Scientist"
- "Help me transition from marketing to tech"
- "What skills do I need for a Frontend Developer role?"
- "How do I prepare for technical interviews?"
- "Create a learning roadmap for machine learning"
- "What are my goals for today?"

Feel free to ask me anything about your career! I'm here to provide personalized, actionable advice based on your unique situation and goals.

What would you like to focus on today?`, displayName(p), streakLine)
}
