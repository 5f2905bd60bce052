package chatbot

import (
	"regexp"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// RuleResponse is the reply half of a canned template.
type RuleResponse struct {
	Text        string
	Suggestions []models.Suggestion
}

// ResponseRule is one keyword-triggered canned template. Rules are
// declarative data loaded at construction and read-only afterwards.
type ResponseRule struct {
	Category string
	Keywords []string
	Response RuleResponse
}

// nlpScoreThreshold is the minimum relevance score a rule must reach.
const nlpScoreThreshold = 0.3

// suggestionMergeThreshold lets a close runner-up contribute suggestions
// on follow-up messages.
const suggestionMergeThreshold = 0.5

// closureResponse is the fixed farewell for conversation-ending messages.
var closureResponse = RuleResponse{
	Text: "Thanks for chatting! If you need anything else, just send me a message anytime.",
}

// defaultResponse is returned when no template clears the threshold.
var defaultResponse = RuleResponse{
	Text: "I'm not sure I understand that one. Could you rephrase it, or pick one of these topics?",
	Suggestions: []models.Suggestion{
		{ID: "projects", Label: "Manage projects"},
		{ID: "tasks", Label: "Assign tasks"},
		{ID: "chat", Label: "Team chat"},
		{ID: "help", Label: "Talk to support"},
	},
}

// defaultConfidence is the confidence attached to the fallback response.
const defaultConfidence = 0.1

// badResponsePatterns is the denylist applied once per process to the
// learned response store. Matches are deleted best-effort.
var badResponsePatterns = []string{
	`\bsports?\b`,
	`\bweather\b`,
	`\bcooking\b`,
	`\brecipes?\b`,
	`\bpolitics\b`,
	`\bfootball\b`,
	`\bcelebrity\b`,
	`\bmovie\b`,
}

// createHowToPatterns answer explicit "how do I create X" questions ahead
// of general template scoring.
var createHowToPatterns = []struct {
	Pattern  *regexp.Regexp
	Response RuleResponse
}{
	{
		Pattern: regexp.MustCompile(`how (do|can) i (create|add|make) (a |an )?(new )?project`),
		Response: RuleResponse{
			Text: "To create a project, open the Projects tab and tap the + button. Give it a name, pick the crew, and you're set.",
			Suggestions: []models.Suggestion{
				{ID: "projects", Label: "Go to projects"},
				{ID: "team", Label: "Invite your crew"},
			},
		},
	},
	{
		Pattern: regexp.MustCompile(`how (do|can) i (create|add|make) (a |an )?(new )?task`),
		Response: RuleResponse{
			Text: "Tasks live inside projects. Open a project, hit Add Task, set a due date and assign it to a team member.",
			Suggestions: []models.Suggestion{
				{ID: "tasks", Label: "View tasks"},
				{ID: "projects", Label: "Open a project"},
			},
		},
	},
	{
		Pattern: regexp.MustCompile(`how (do|can) i (create|add|make) (a |an )?(new )?checklist`),
		Response: RuleResponse{
			Text: "Checklists are under each project's Tools menu. Choose Add Checklist, then add items or start from a saved template.",
			Suggestions: []models.Suggestion{
				{ID: "checklists", Label: "Open checklists"},
			},
		},
	},
	{
		Pattern: regexp.MustCompile(`how (do|can) i (create|add|make) (a |an )?(new )?(schedule|shift)`),
		Response: RuleResponse{
			Text: "Open the Schedule view and tap any open slot to add a shift. You can assign crew members and set repeat rules there.",
			Suggestions: []models.Suggestion{
				{ID: "schedule", Label: "Open schedule"},
			},
		},
	},
}

// viewResponses are per-screen nudges, honored only for short greeting or
// help style messages so they never hijack a concrete question.
var viewResponses = map[string]RuleResponse{
	"dashboard": {
		Text: "You're on your dashboard. From here you can jump into projects, check today's schedule, or catch up on team chat.",
		Suggestions: []models.Suggestion{
			{ID: "projects", Label: "View projects"},
			{ID: "schedule", Label: "Today's schedule"},
		},
	},
	"projects": {
		Text: "This is your projects list. Tap any project to see its tasks, photos and checklists, or create a new one with the + button.",
		Suggestions: []models.Suggestion{
			{ID: "create-project", Label: "Create a project"},
		},
	},
	"tasks": {
		Text: "Here are your tasks. You can filter by assignee or due date, and tap a task to update its status.",
		Suggestions: []models.Suggestion{
			{ID: "create-task", Label: "Add a task"},
		},
	},
	"schedule": {
		Text: "This is the schedule view. Tap a slot to add a shift, or drag shifts to move them between crew members.",
	},
	"reports": {
		Text: "Reports pull together time, tasks and safety data. Pick a date range and a report type to get started.",
	},
}

// defaultRules returns the canned template table, grouped by category and
// flattened for scoring.
func defaultRules() []ResponseRule {
	return []ResponseRule{
		// greeting
		{
			Category: "greeting",
			Keywords: []string{"hello", "hi", "hey", "greetings"},
			Response: RuleResponse{
				Text: "Hi there! I'm the {business} assistant on {platform}. Ask me about projects, tasks, scheduling or anything else on the platform.",
				Suggestions: []models.Suggestion{
					{ID: "projects", Label: "Manage projects"},
					{ID: "help", Label: "What can you do?"},
				},
			},
		},
		{
			Category: "greeting",
			Keywords: []string{"help", "what can you do", "support", "assist"},
			Response: RuleResponse{
				Text: "I can help you find your way around {platform}: creating projects and tasks, scheduling your crew, tracking time, running reports and more. What do you need?",
				Suggestions: []models.Suggestion{
					{ID: "projects", Label: "Projects"},
					{ID: "tasks", Label: "Tasks"},
					{ID: "schedule", Label: "Scheduling"},
					{ID: "reports", Label: "Reports"},
				},
			},
		},

		// projects
		{
			Category: "projects",
			Keywords: []string{"project", "projects", "new project", "create project", "job", "jobs", "site"},
			Response: RuleResponse{
				Text: "Projects are the home base for each job: tasks, crew, photos and checklists all live inside one. You can create one from the Projects tab with the + button.",
				Suggestions: []models.Suggestion{
					{ID: "create-project", Label: "Create a project"},
					{ID: "projects", Label: "View projects"},
				},
			},
		},
		{
			Category: "projects",
			Keywords: []string{"gallery", "photo", "photos", "pictures", "images", "project gallery"},
			Response: RuleResponse{
				Text: "Every project has a photo gallery. Upload site photos from the project page and your whole crew can see them instantly.",
				Suggestions: []models.Suggestion{
					{ID: "gallery", Label: "Open gallery"},
				},
			},
		},

		// tasks
		{
			Category: "tasks",
			Keywords: []string{"task", "tasks", "assign", "assignment", "todo", "to do", "due date"},
			Response: RuleResponse{
				Text: "Tasks keep the crew moving. Add them inside a project, set due dates, and assign them to team members. Everyone gets notified automatically.",
				Suggestions: []models.Suggestion{
					{ID: "create-task", Label: "Add a task"},
					{ID: "tasks", Label: "View my tasks"},
				},
			},
		},
		{
			Category: "tasks",
			Keywords: []string{"checklist", "checklists", "check list", "inspection"},
			Response: RuleResponse{
				Text: "Checklists standardize your walkthroughs and inspections. Build one from scratch or save a template to reuse across projects.",
				Suggestions: []models.Suggestion{
					{ID: "checklists", Label: "Open checklists"},
				},
			},
		},

		// team
		{
			Category: "team",
			Keywords: []string{"team", "crew", "member", "members", "invite", "staff", "workers", "employee"},
			Response: RuleResponse{
				Text: "Your team lives under the Team tab. Invite members by email or phone number and set their role to control what they can see.",
				Suggestions: []models.Suggestion{
					{ID: "invite", Label: "Invite a member"},
					{ID: "team", Label: "View team"},
				},
			},
		},

		// chat
		{
			Category: "chat",
			Keywords: []string{"chat", "message", "messages", "communication", "talk", "group chat"},
			Response: RuleResponse{
				Text: "Team chat is built in. Every project gets its own channel, and you can message any team member directly from their profile.",
				Suggestions: []models.Suggestion{
					{ID: "chat", Label: "Open chat"},
				},
			},
		},

		// time
		{
			Category: "time",
			Keywords: []string{"time", "timesheet", "clock", "clock in", "clock out", "hours", "tracking", "track time"},
			Response: RuleResponse{
				Text: "Crew members clock in and out right from their phone, and timesheets roll up automatically. You can review and approve hours from the Time tab.",
				Suggestions: []models.Suggestion{
					{ID: "timesheets", Label: "View timesheets"},
				},
			},
		},

		// scheduling
		{
			Category: "scheduling",
			Keywords: []string{"schedule", "scheduling", "shift", "shifts", "calendar", "roster"},
			Response: RuleResponse{
				Text: "The Schedule view shows every shift across your crew. Add shifts, set repeats, and members get notified of any change.",
				Suggestions: []models.Suggestion{
					{ID: "schedule", Label: "Open schedule"},
				},
			},
		},

		// reports
		{
			Category: "reports",
			Keywords: []string{"report", "reports", "dashboard", "analytics", "summary", "export"},
			Response: RuleResponse{
				Text: "Reports pull together time, task progress and safety records. Pick a date range from the Reports tab and export whenever you need.",
				Suggestions: []models.Suggestion{
					{ID: "reports", Label: "View reports"},
				},
			},
		},

		// safety
		{
			Category: "safety",
			Keywords: []string{"safety", "osha", "compliance", "incident", "hazard", "inspection"},
			Response: RuleResponse{
				Text: "Safety tools cover OSHA compliance checklists, incident logging and inspection records, all tied to the project they happened on.",
				Suggestions: []models.Suggestion{
					{ID: "safety", Label: "Safety center"},
				},
			},
		},

		// supplies
		{
			Category: "supplies",
			Keywords: []string{"supply", "supplies", "request", "order", "materials", "equipment"},
			Response: RuleResponse{
				Text: "Supply requests let the crew flag what's needed on site. Submit one from a project and managers get notified to approve it.",
				Suggestions: []models.Suggestion{
					{ID: "supplies", Label: "Request supplies"},
				},
			},
		},

		// account
		{
			Category: "account",
			Keywords: []string{"subscription", "billing", "plan", "account", "upgrade", "price", "pricing", "cost"},
			Response: RuleResponse{
				Text: "Your subscription and billing details are under Account Settings. Plan changes take effect immediately and billing is prorated.",
				Suggestions: []models.Suggestion{
					{ID: "account", Label: "Account settings"},
				},
			},
		},
	}
}
