package parser

import (
	"fmt"
	"strings"

	"cv-organizer-go/internal/types"
)

// extractionInstruction 固定的抽取指令与目标schema（抽取契约），无条件前置
const extractionInstruction = `You are a resume parser. Extract structured data from any CV text and return valid JSON that maps to the following schema.

Include only fields that can be extracted directly from the CV. Omit any system-generated fields like IDs. Never emit null or empty placeholder values for fields that are absent from the CV; omit them entirely.

Map links like LinkedIn, GitHub, and Portfolio to their correct fields. If the text includes a label (e.g., "LinkedIn:") followed by a non-clickable name, but embedded links are listed as "Embedded Link:" lines, use the actual URLs. If a line "Embedded Link: ProfilePhoto: <url>" is present, set Candidate.ProfilePhoto to that URL; never embed image data directly.

If the CV states proficiency in any natural language (e.g., "fluent in Spanish"), classify it under the Languages section.

Return all dates in YYYY-MM-DD format, and normalize phone numbers to international format (e.g., +[CountryCode]-[Number]).

Expected JSON structure:
{
  "Candidate": {
    "FullName",
    "Nationality",
    "CurrentLocation",
    "Phone",
    "Email",
    "LinkedInURL",
    "CareerSummary",
    "ProfilePhoto",
    "PortfolioLink"
  },
  "EmploymentHistory": [ ... ],
  "Education": [ ... ],
  "Certifications": [ ... ],
  "Skills": [ ... ],
  "Projects": [ ... ],
  "Publications": [ ... ],
  "VolunteerExperience": [ ... ],
  "References": [ ... ],
  "OtherInformation": [ ... ],
  "Languages": [ ... ],
  "Awards": [ ... ],
  "Interests": [ ... ]
}`

// BuildPrompt 把提取出的页面文本、已解析链接和头像URL装配成喂给抽取模型的单一文本
// 纯函数：页面文本按页序拼接，每页文本之后紧跟该页的链接行；
// 头像URL（如果有）作为一行放在全部页面内容之前
func BuildPrompt(content *types.ExtractedContent, profilePhotoURL string) string {
	var sb strings.Builder
	sb.WriteString(extractionInstruction)
	sb.WriteString("\n\nCV Content:\n")

	if profilePhotoURL != "" {
		fmt.Fprintf(&sb, "Embedded Link: ProfilePhoto: %s\n", profilePhotoURL)
	}

	for _, page := range content.Pages {
		sb.WriteString(page.Text)
		sb.WriteByte('\n')
		for _, uri := range page.LinkURIs {
			fmt.Fprintf(&sb, "Embedded Link: %s\n", uri)
		}
	}

	return sb.String()
}
