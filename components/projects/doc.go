// Package projects provides the reference project catalogue, a category
// filter that works both on the data and on a rendered projects page, and a
// small net/http handler that returns the filtered list as JSON.
//
// The default catalogue is loaded from the embedded data/projects.yaml.
package projects
