package extract

// Instruction is sent together with every image.
const Instruction = `Analyze this grade sheet/result image and extract the following information for each course in JSON format:

IMPORTANT: Look for a table containing course/subject information with grades.

For each course, extract:
- courseCode: The course code (e.g., "21CS101", "22MA102")
- courseName: The full name of the course/subject
- credits: The credit value (number) - look for "Credits" or "Credit Earned" column
- gradePoints: The grade points earned (number) - this is usually credits × grade value
- grade: The letter grade (O, A+, A, B+, B, C, S, P, F, etc.)

Grade Scale Reference (10-point scale):
- O (Outstanding) = 10
- A+ = 9
- A = 8
- B+ = 7
- B = 6
- C = 5
- S/P (Pass) = 4
- F (Fail) = 0

Return ONLY valid JSON in this exact format:
{
  "courses": [
    {
      "courseCode": "string",
      "courseName": "string",
      "credits": number,
      "gradePoints": number,
      "grade": "string"
    }
  ]
}

If you cannot extract the data, return: {"error": "Could not extract grade data from image"}`
