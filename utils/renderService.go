package utils

import (
	"academy/config"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RenderClient calls the external credential rendering service. It implements
// academics.Renderer.
type RenderClient struct {
	client *resty.Client
}

// NewRenderClient builds a client against the configured rendering service.
func NewRenderClient() *RenderClient {
	client := resty.New().
		SetBaseURL(config.AppConfig.RenderServiceURL).
		SetHeader("Authorization", "Bearer "+config.AppConfig.RenderServiceKey).
		SetTimeout(30 * time.Second)
	return &RenderClient{client: client}
}

type renderRequest struct {
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	CourseTitle  string  `json:"course_title"`
	Grade        float64 `json:"grade"`
	Template     string  `json:"template"`
}

type renderResponse struct {
	DocumentReference string `json:"document_reference"`
	Error             string `json:"error"`
}

// RenderCredential renders a credential document and returns its opaque
// document reference.
func (r *RenderClient) RenderCredential(studentName, studentEmail, courseTitle string, grade float64, template string) (string, error) {
	var result renderResponse

	resp, err := r.client.R().
		SetBody(renderRequest{
			StudentName:  studentName,
			StudentEmail: studentEmail,
			CourseTitle:  courseTitle,
			Grade:        grade,
			Template:     template,
		}).
		SetResult(&result).
		Post("")
	if err != nil {
		return "", err
	}

	if resp.IsError() {
		if result.Error != "" {
			return "", fmt.Errorf("render service: %s", result.Error)
		}
		return "", fmt.Errorf("render service returned status %d", resp.StatusCode())
	}
	if result.DocumentReference == "" {
		return "", fmt.Errorf("render service returned an empty document reference")
	}
	return result.DocumentReference, nil
}
