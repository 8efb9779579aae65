package views

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
)

// HelpTopic is one section of the help view.
type HelpTopic struct {
	Key      string
	Title    string
	Sections []HelpSection
}

type HelpSection struct {
	Subtitle string
	Items    []string
}

var HelpTopics = []HelpTopic{
	{"getting-started", "🚀 Getting Started", []HelpSection{
		{"Welcome to iReporter", []string{
			"iReporter is a platform for reporting incidents like corruption and infrastructure issues",
			"You can report two types of incidents: Red Flags (corruption) and Interventions (infrastructure)",
			"Track the status of your reports from submission to resolution",
		}},
		{"First Steps", []string{
			"1. Register for an account with your email",
			"2. Verify your email address (if email verification is enabled)",
			"3. Login to access your dashboard",
			"4. Start reporting incidents that need attention",
		}},
	}},
	{"dashboard", "📊 Dashboard Guide", []HelpSection{
		{"Overview", []string{
			"Your dashboard shows a summary of all your incident reports",
			"View statistics: total incidents, pending, investigating, and resolved",
		}},
		{"Statistics Cards", []string{
			"📊 Total Incidents - All incidents you've reported",
			"⏳ Pending - Incidents waiting for admin review",
			"🔍 Investigating - Incidents currently being looked into",
			"✅ Resolved - Successfully completed incidents",
			"❌ Rejected - Incidents that couldn't be processed",
		}},
	}},
	{"reporting", "📝 Reporting Incidents", []HelpSection{
		{"Types of Incidents", []string{
			"🚩 Red Flag - Corruption, bribery, embezzlement, or misconduct",
			"🔧 Intervention - Infrastructure problems, public service issues",
		}},
		{"Writing Good Reports", []string{
			"Be specific and factual in your description",
			"Include dates, times, and locations",
			"Mention any witnesses or evidence",
			"Avoid accusations without evidence",
		}},
		{"After Submission", []string{
			`Your report starts with "Pending" status`,
			"Administrators will review and investigate",
			"Status updates: Pending → Investigating → Resolved/Rejected",
		}},
	}},
	{"managing", "📋 Managing Your Reports", []HelpSection{
		{"Viewing Your Incidents", []string{
			"Filter by type: list redflag, list intervention",
			"Filter by status: list pending, list investigating, list resolved, list rejected",
		}},
		{"Status Meanings", []string{
			"Pending - Report submitted, waiting for review",
			"Investigating - Administrators are looking into the issue",
			"Resolved - Issue has been addressed and closed",
			"Rejected - Report couldn't be processed",
		}},
	}},
	{"admin", "👑 Admin Features", []HelpSection{
		{"User Management", []string{
			"View all registered users",
			"Promote users to admin or demote to regular user",
		}},
		{"Incident Management", []string{
			"See all incidents from all users",
			"Update status: Pending → Investigating → Resolved/Rejected",
			"Edit or delete any incident if necessary",
		}},
	}},
	{"account", "👤 Account Management", []HelpSection{
		{"Registration", []string{
			"Choose a strong password (minimum 6 characters)",
			"The first registered user automatically becomes an admin",
		}},
		{"Email Verification", []string{
			"Run verify <token> with the token from your verification email",
			"Request a new verification email with resend <email>",
		}},
	}},
	{"troubleshooting", "🔧 Troubleshooting", []HelpSection{
		{"Common Issues", []string{
			"Can't login? Check your email and password",
			"Email not verified? Check spam folder for verification email",
			"Forgot password? Contact system administrator",
			"Offline banner shown? Check that the API server is reachable",
		}},
	}},
}

// QuickTips are the short hints shown on a view.
var QuickTips = map[string][]string{
	guard.PathLogin: {
		"Enter your registered email address",
		"Use the password you created during registration",
		"First user becomes admin automatically",
		"Contact admin if you forgot your password",
	},
	guard.PathRegister: {
		"Use a valid email address",
		"Choose a strong password (min 6 characters)",
		"First registered user becomes admin",
		"You will be logged in automatically after signup",
	},
	guard.PathReport: {
		"You can report incidents without creating an account",
		"Provide your email to track progress later",
		"All reports are taken seriously and investigated",
		"Register/login later to see your incident status",
	},
}

// FindHelpTopic looks a topic up by key.
func FindHelpTopic(key string) (HelpTopic, bool) {
	for _, t := range HelpTopics {
		if t.Key == key {
			return t, true
		}
	}
	return HelpTopic{}, false
}

// RenderHelp draws topic key, or the topic index when key is empty or unknown.
func RenderHelp(key string) string {
	var b strings.Builder
	t, ok := FindHelpTopic(key)
	if !ok {
		b.WriteString(headingStyle.Render("Help topics") + "\n")
		for _, t := range HelpTopics {
			fmt.Fprintf(&b, "  %-16s %s\n", t.Key, t.Title)
		}
		b.WriteString(mutedStyle.Render("Use: help <topic>") + "\n")
		return b.String()
	}

	b.WriteString(headingStyle.Render(t.Title) + "\n")
	for _, s := range t.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Subtitle)
		for _, it := range s.Items {
			fmt.Fprintf(&b, "  • %s\n", it)
		}
	}
	return b.String()
}

// RenderTips draws the quick tips for path, or "" when it has none.
func RenderTips(path string) string {
	tips := QuickTips[path]
	if len(tips) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("💡 Quick Tips\n")
	for _, t := range tips {
		b.WriteString("  • " + t + "\n")
	}
	return mutedStyle.Render(b.String())
}
