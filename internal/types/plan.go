package types

// TransitionPlan is the composed advisory output shown to the user.
// When HasValidCourses is false, CourseRecommendations holds an explicit
// "no courses found" explanation rather than an empty string.
type TransitionPlan struct {
	Introduction          string `json:"introduction"`
	SkillAssessment       string `json:"skill_assessment"`
	CourseRecommendations string `json:"course_recommendations"`
	CareerAdvice          string `json:"career_advice"`
	HasValidCourses       bool   `json:"has_valid_courses"`
}
