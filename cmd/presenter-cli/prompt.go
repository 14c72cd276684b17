package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var errPromptCancelled = errors.New("prompt cancelled")

// selectVersion asks for one of versions. Replaced in tests.
var selectVersion = func(typeName string, versions []string) (string, error) {
	prompt := &survey.Select{
		Message: fmt.Sprintf("Presenter version for %s:", typeName),
		Options: versions,
		Help:    "Versions registered for the model type in the manifest.",
	}
	for _, version := range versions {
		if version == "default" {
			prompt.Default = version
			break
		}
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errPromptCancelled
		}
		return "", err
	}
	return out, nil
}
