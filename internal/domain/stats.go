package domain

import "time"

// Stats holds the label counts for a set of issues.
// Total is the number of issues, independent of their labels.
type Stats struct {
	Total          int `json:"total"`
	Bugs           int `json:"bugs"`
	Features       int `json:"features"`
	Docs           int `json:"docs"`
	Questions      int `json:"questions"`
	HighPriority   int `json:"highPriority"`
	MediumPriority int `json:"mediumPriority"`
	LowPriority    int `json:"lowPriority"`
}

// ChartSlice is one segment of a pie chart or one bar of a bar chart.
type ChartSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Activity summarizes lifecycle and discussion figures for the fetched issues.
type Activity struct {
	Open           int     `json:"open"`
	Closed         int     `json:"closed"`
	MeanComments   float64 `json:"meanComments"`
	MedianComments float64 `json:"medianComments"`
	MedianAgeHours float64 `json:"medianAgeHours"`
}

// Dashboard is everything the dashboard page shows for one fetch.
type Dashboard struct {
	Repository string       `json:"repository"`
	Stats      Stats        `json:"stats"`
	Categories []ChartSlice `json:"categories"`
	Priorities []ChartSlice `json:"priorities"`
	Recent     []Issue      `json:"recent"`
	Reports    []Issue      `json:"reports"`
	Activity   Activity     `json:"activity"`
	FetchedAt  time.Time    `json:"fetchedAt"`
}
