package store

// Fixtures returns the built-in demo dataset: three active projects and one
// completed one, the Gantt tasks of the first two, a short marketing chain,
// the team roster and the project milestones. Each call returns a fresh copy.
func Fixtures() RawDataset {
	return RawDataset{
		Projects: []RawProject{
			{ID: "1", Name: "Website Redesign", Description: "Complete overhaul of company website with modern design and improved UX",
				StartDate: "2024-01-01", EndDate: "2024-01-15", Progress: 75, Status: "in-progress", Priority: "high",
				TeamSize: 5, Manager: "Sarah Johnson", Budget: 50000, Spent: 37500},
			{ID: "2", Name: "Mobile App Development", Description: "Native iOS and Android app for customer engagement",
				StartDate: "2024-01-10", EndDate: "2024-02-28", Progress: 25, Status: "planning", Priority: "medium",
				TeamSize: 8, Manager: "Mike Chen", Budget: 120000, Spent: 30000},
			{ID: "3", Name: "Marketing Campaign", Description: "Digital marketing campaign for product launch",
				StartDate: "2023-12-15", EndDate: "2024-01-10", Progress: 90, Status: "review", Priority: "high",
				TeamSize: 3, Manager: "Emily Davis", Budget: 25000, Spent: 22500},
			{ID: "4", Name: "Infrastructure Upgrade", Description: "Server migration and performance optimization",
				StartDate: "2023-11-01", EndDate: "2023-12-20", Progress: 100, Status: "completed", Priority: "critical",
				TeamSize: 4, Manager: "Alex Rodriguez", Budget: 75000, Spent: 72000},
		},
		Tasks: []RawTask{
			{ID: "1", Name: "User Research & Analysis", ProjectID: "1", StartDate: "2024-01-01", EndDate: "2024-01-03",
				Progress: 100, Assignee: "John Doe", Priority: "high", Status: "completed", Critical: true,
				Description: "Analyze user feedback and research data to inform design decisions", Tags: []string{"research"}},
			{ID: "2", Name: "Wireframe Creation", ProjectID: "1", StartDate: "2024-01-03", EndDate: "2024-01-05",
				Progress: 100, Dependencies: []string{"1"}, Assignee: "John Doe", Priority: "high", Status: "completed", Critical: true,
				Description: "Create detailed wireframes for the new homepage layout", Tags: []string{"design", "ui/ux"}},
			{ID: "3", Name: "Design System Setup", ProjectID: "1", StartDate: "2024-01-05", EndDate: "2024-01-08",
				Progress: 75, Dependencies: []string{"2"}, Assignee: "John Doe", Priority: "medium", Status: "in-progress", Critical: true},
			{ID: "4", Name: "Homepage Development", ProjectID: "1", StartDate: "2024-01-08", EndDate: "2024-01-12",
				Progress: 40, Dependencies: []string{"3"}, Assignee: "Jane Smith", Priority: "high", Status: "in-progress", Critical: true},
			{ID: "5", Name: "Backend Integration", ProjectID: "1", StartDate: "2024-01-10", EndDate: "2024-01-14",
				Progress: 0, Dependencies: []string{"4"}, Assignee: "Mike Wilson", Priority: "critical", Status: "pending",
				Description: "Develop REST API endpoints for user authentication and data management", Tags: []string{"backend", "api"}},
			{ID: "6", Name: "Testing & QA", ProjectID: "1", StartDate: "2024-01-12", EndDate: "2024-01-15",
				Progress: 0, Dependencies: []string{"4", "5"}, Assignee: "Lisa Chen", Priority: "high", Status: "pending", Critical: true},
			{ID: "7", Name: "App Architecture", ProjectID: "2", StartDate: "2024-01-10", EndDate: "2024-01-15",
				Progress: 60, Assignee: "Mike Wilson", Priority: "critical", Status: "in-progress", Critical: true,
				Description: "Design and implement database schema for the mobile application", Tags: []string{"database", "backend"}},
			{ID: "8", Name: "UI Components", ProjectID: "2", StartDate: "2024-01-15", EndDate: "2024-01-25",
				Progress: 20, Dependencies: []string{"7"}, Assignee: "Jane Smith", Priority: "high", Status: "in-progress"},
			{ID: "9", Name: "Content Creation", ProjectID: "3", StartDate: "2023-12-15", EndDate: "2023-12-20",
				Progress: 100, Assignee: "John Doe", Priority: "medium", Status: "completed",
				Description: "Create engaging content for social media marketing campaign", Tags: []string{"marketing", "content"}},
			{ID: "10", Name: "Design Assets", ProjectID: "3", StartDate: "2024-01-02", EndDate: "2024-01-05",
				Progress: 100, Dependencies: []string{"9"}, Assignee: "Jane Smith", Priority: "medium", Status: "completed"},
			{ID: "11", Name: "Campaign Launch", ProjectID: "3", StartDate: "2024-01-08", EndDate: "2024-01-10",
				Progress: 60, Dependencies: []string{"10"}, Assignee: "Lisa Chen", Priority: "critical", Status: "in-progress"},
		},
		Members: []RawMember{
			{ID: "john-doe", Name: "John Doe", Email: "john.doe@example.com", Role: "Senior Designer", Status: "active",
				Skills: []string{"UI/UX", "Figma", "Research"}},
			{ID: "jane-smith", Name: "Jane Smith", Email: "jane.smith@example.com", Role: "Frontend Developer", Status: "busy",
				Skills: []string{"React", "TypeScript", "CSS"}},
			{ID: "mike-wilson", Name: "Mike Wilson", Email: "mike.wilson@example.com", Role: "Backend Developer", Status: "active",
				Skills: []string{"Go", "PostgreSQL", "APIs"}},
			{ID: "lisa-chen", Name: "Lisa Chen", Email: "lisa.chen@example.com", Role: "QA Engineer", Status: "offline",
				Skills: []string{"Testing", "Automation"}},
			{ID: "sarah-johnson", Name: "Sarah Johnson", Email: "sarah.johnson@example.com", Role: "Project Manager", Status: "active",
				Skills: []string{"Planning", "Agile"}},
		},
		Milestones: []RawMilestone{
			{ID: "1", ProjectID: "1", Title: "Research Phase Complete", Due: "2024-01-03", Completed: true},
			{ID: "2", ProjectID: "1", Title: "Design Phase Complete", Due: "2024-01-08"},
			{ID: "3", ProjectID: "1", Title: "Development Phase Complete", Due: "2024-01-12"},
			{ID: "4", ProjectID: "1", Title: "Project Launch", Due: "2024-01-15"},
			{ID: "5", ProjectID: "2", Title: "Architecture Sign-off", Due: "2024-01-15"},
			{ID: "6", ProjectID: "2", Title: "Beta Release", Due: "2024-02-28"},
			{ID: "7", ProjectID: "3", Title: "Campaign Live", Due: "2024-01-10"},
			{ID: "8", ProjectID: "4", Title: "Migration Complete", Due: "2023-12-20", Completed: true},
		},
	}
}

// FixtureDataset is Fixtures converted to model values. The fixtures are
// valid by construction, so a conversion error is a programming error.
func FixtureDataset() Dataset {
	ds, err := Fixtures().Dataset()
	if err != nil {
		panic("store: invalid fixtures: " + err.Error())
	}
	return ds
}
