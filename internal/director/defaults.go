package director

import "fmt"

func items(prefix string, labels ...string) []Item {
	out := make([]Item, len(labels))
	for i, l := range labels {
		out[i] = Item{ID: fmt.Sprintf("%s%d", prefix, i+1), Label: l}
	}
	return out
}

func slideKeys(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("slide-%d", from+i)
	}
	return out
}

// DefaultScenario is the full portfolio page. The module flow and the
// ascent run between about and contact.
func DefaultScenario() *Scenario {
	return &Scenario{
		Version:  "1.0",
		Viewport: Viewport{Width: 1280, Height: 800},
		Pointer:  "fine",
		Seed:     1,
		Sections: []Section{
			{
				ID:       "hero",
				Kind:     KindHero,
				Title:    "Full-Stack Engineer",
				Subtitle: "Enterprise platforms, SaaS and AI systems",
				Body:     "I design and ship reliable systems for complex environments.",
				Items:    items("cta-", "View case studies", "Get in touch"),
				Dwell:    1.5,
			},
			{
				ID:    "how-i-work",
				Kind:  KindHowIWork,
				Title: "How I work",
				Items: items("how-", "Methodology", "Results", "Capabilities"),
				Track: items("stack-", "Next.js", "React", "TypeScript", "Tailwind CSS", "Spring Boot",
					"Express.js", "Node.js", "Angular", "PostgreSQL", "Supabase"),
			},
			{
				ID:    "services",
				Kind:  KindServices,
				Title: "Request a service",
				Items: items("service-", "Enterprise Platforms", "Multi-tenant SaaS build", "Legacy Modernisation",
					"Intelligence Dashboards", "AI Systems", "System Audits & Performance", "Architecture Consulting"),
			},
			{
				ID:    "case-studies",
				Kind:  KindCaseStudies,
				Title: "Curated work from complex environments.",
				Cases: []Case{
					{ID: "board-smith", Title: "Board Smith", Slides: slideKeys(1, 3)},
					{ID: "ieims", Title: "IEIMS - National Education Platform", Slides: slideKeys(4, 3)},
				},
			},
			{
				ID:    "skills",
				Kind:  KindSkills,
				Title: "Building production systems that solve real problems.",
				Body:  "Don't see your stack? Let's talk",
				Items: items("skill-", "Next.js", "React", "TypeScript", "Tailwind CSS", "Angular",
					"Express.js", "NestJS", "Node.js", "Spring Boot", "Spring MVC",
					"PostgreSQL", "Oracle", "SQL Server", "MySQL", "MongoDB", "Supabase",
					"Docker", "Kubernetes", "AWS", "Vercel", "Git", "Linux / Debian", "Wasabi", "Render"),
			},
			{
				ID:    "about",
				Kind:  KindAbout,
				Title: "About",
				Items: items("card-", "System Architecture", "Performance Work", "Government Systems", "AI Assistant Products"),
				Track: items("role-", "Full-Stack Engineer", "AI Training & Frontend", "Junior Software Engineer",
					"National Education Platforms", "Government Systems", "AI Assistant Products"),
			},
			{
				ID:    "modules",
				Kind:  KindModuleFlow,
				Title: "Platform modules",
				Nodes: []Node{
					{ID: "auth", Label: "Auth", X: -260, Y: -140},
					{ID: "billing", Label: "Billing", X: 260, Y: -140},
					{ID: "reports", Label: "Reports", X: 280, Y: 150, Curve: &Point{X: 220, Y: 0}},
					{ID: "assistant", Label: "AI", X: -280, Y: 150, Curve: &Point{X: -40, Y: 160}},
				},
			},
			{
				ID:    "ascent",
				Kind:  KindAscent,
				Title: "Ascending to Orbit",
			},
			{
				ID:    "contact",
				Kind:  KindContact,
				Title: "Let's build something reliable.",
				Body:  "Scan to get in touch",
				URL:   "mailto:hello@example.com",
				Dwell: 2,
			},
		},
	}
}
