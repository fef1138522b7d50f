package config

import (
	"os"

	"github.com/kindling-io/kindling/internal/models"
)

// LoadProjectsIndex loads the projects index from ~/.kindling/projects.yaml.
// If the file doesn't exist, returns an empty index.
func LoadProjectsIndex() (*models.ProjectsIndex, error) {
	path, err := GlobalProjectsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewProjectsIndex)
}

// SaveProjectsIndex saves the projects index to ~/.kindling/projects.yaml.
func SaveProjectsIndex(index *models.ProjectsIndex) error {
	path, err := GlobalProjectsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, index)
}

// LoadProject loads a stored project. Returns nil, nil when it doesn't exist.
func LoadProject(projectID string) (*models.Project, error) {
	path, err := ProjectFile(projectID)
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, nil
	}

	var project models.Project
	if err := LoadYAML(path, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// SaveProject writes a stored project's project.yaml.
func SaveProject(project *models.Project) error {
	path, err := ProjectFile(project.ProjectID)
	if err != nil {
		return err
	}
	return SaveYAML(path, project)
}

// RegisterProject adds a project to the global index, or renames an existing entry.
func RegisterProject(projectID, name string) error {
	index, err := LoadProjectsIndex()
	if err != nil {
		return err
	}

	if existing := index.FindProject(projectID); existing != nil {
		existing.Name = name
		return SaveProjectsIndex(index)
	}

	index.AddProject(models.ProjectEntry{
		ProjectID: projectID,
		Name:      name,
	})
	return SaveProjectsIndex(index)
}

// UnregisterProject removes a project from the global index and deletes its directory.
func UnregisterProject(projectID string) error {
	index, err := LoadProjectsIndex()
	if err != nil {
		return err
	}

	if index.RemoveProject(projectID) {
		if err := SaveProjectsIndex(index); err != nil {
			return err
		}
	}

	dir, err := ProjectDir(projectID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
