package models

// Template is a starter code body offered when creating a project.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Code        string `yaml:"code"`
}
