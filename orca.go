package orcadocs

// ORCA returns the navigation manifest of the ORCA documentation site.
func ORCA() *SidebarSet {
	return NewSidebarSet(
		Sidebar{
			ID: "about_orca",
			Categories: []Category{
				{
					Label: "Introduction",
					Entries: []Entry{
						Doc("about/introduction/orca-intro"),
						Doc("about/introduction/intro-navigating"),
						Doc("about/introduction/intro-contributing"),
						Doc("about/introduction/intro-glossary"),
					},
				},
				{
					Label: "Architecture",
					Entries: []Entry{
						Doc("about/architecture/architecture-intro"),
						Doc("about/architecture/architecture-software-system"),
						Doc("about/architecture/architecture-archive-container"),
						Doc("about/architecture/architecture-recover-container"),
						Doc("about/architecture/architecture-database-container"),
					},
				},
				{
					Label:   "Helpful Tips",
					Entries: []Entry{Doc("about/tips")},
				},
				{
					Label:   "ORCA Team",
					Entries: []Entry{Doc("about/team")},
				},
			},
		},
		Sidebar{
			ID: "dev_guide",
			Categories: []Category{
				{
					Label:   "Getting Started",
					Entries: []Entry{Doc("developer/quickstart/developer-intro")},
				},
				{
					Label: "Development Guide",
					Entries: []Entry{
						Group("Developing Code",
							"developer/development-guide/code/contrib-code-intro",
							"developer/development-guide/code/setup-dev-env",
							"developer/development-guide/code/linting",
							"developer/development-guide/code/unit-tests",
							"developer/development-guide/code/postgres-tests",
						),
						Group("Developing Documentation",
							"developer/development-guide/documentation/contrib-documentation-intro",
							"developer/development-guide/documentation/contrib-documentation-env",
							"developer/development-guide/documentation/contrib-documentation-add",
							"developer/development-guide/documentation/contrib-documentation-templates",
							"developer/development-guide/documentation/contrib-documentation-tasks",
							"developer/development-guide/documentation/documentation-style-guide",
							"developer/development-guide/documentation/contrib-documentation-deploy",
						),
					},
				},
				{
					Label: "Deployment Guide",
					Entries: []Entry{
						Doc("developer/deployment-guide/deployment"),
						Doc("developer/deployment-guide/deployment-environment"),
						Doc("developer/deployment-guide/deployment-s3-bucket"),
						Doc("developer/deployment-guide/testing_deployment"),
					},
				},
			},
		},
		Sidebar{
			ID: "cookbook",
			Categories: []Category{
				{
					Label:   "Getting Started",
					Entries: []Entry{Doc("cookbook/cookbook-intro")},
				},
			},
		},
		Sidebar{
			ID: "ops_guide",
			Categories: []Category{
				{
					Label:   "Getting Started",
					Entries: []Entry{Doc("operator/operator-intro")},
				},
			},
		},
	)
}
