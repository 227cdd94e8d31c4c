// Package prompt holds the instruction texts sent to the model.
package prompt

import "strings"

// System: общая system-инструкция, склеивается с каждой задачей.
const System = `You are an expert aptitude test solver. Your primary task is to solve aptitude problems quickly and accurately. For multiple choice questions, provide the correct answer with a brief, clear explanation. Focus on logical reasoning, mathematical accuracy, and efficient problem-solving techniques. Always be direct and concise.`

const Extract = `Analyze the aptitude problem(s) in these images and extract the information in JSON format:

{
  "problem_statement": "The exact question or problem from the image",
  "problem_type": "Type of aptitude problem (e.g., logical reasoning, quantitative, verbal, spatial)",
  "options": ["A) option1", "B) option2", "C) option3", "D) option4"],
  "key_concepts": ["concept1", "concept2"],
  "difficulty_level": "easy/medium/hard",
  "has_valid_problem": true
}

If no clear aptitude problem is found, return:
{
  "problem_statement": "No clear aptitude problem detected in the image",
  "problem_type": "unknown",
  "options": [],
  "key_concepts": [],
  "difficulty_level": "unknown",
  "has_valid_problem": false
}

Important: Return ONLY the JSON object without markdown formatting. Focus on the clearest/main problem if multiple are present.`

const solve = `Solve this aptitude problem:
%PROBLEM%

Provide your solution in this JSON format:
{
  "solution": {
    "correct_answer": "The correct option (e.g., 'A', 'B', 'C', 'D')",
    "answer_value": "The actual value/content of the correct answer",
    "explanation": "Brief 2-3 sentence explanation of the solution method",
    "solving_steps": ["Step 1: brief description", "Step 2: brief description"],
    "time_to_solve": "estimated time in seconds for average test-taker",
    "tips": "One quick tip or shortcut for similar problems"
  }
}

Focus on:
- Identifying the correct answer quickly
- Providing clear, logical reasoning
- Mentioning any shortcuts or patterns
- Being concise but complete

Important: Return ONLY the JSON object without markdown formatting.`

const debug = `Review this aptitude problem solution:
Original problem: %PROBLEM%
Current solution: %SOLUTION%

Additional context from images provided. Analyze and provide corrected solution:

{
  "solution": {
    "correct_answer": "The correct option (e.g., 'A', 'B', 'C', 'D')",
    "answer_value": "The actual value/content of the correct answer",
    "explanation": "Brief explanation of the correct solution",
    "error_analysis": "What was wrong with the previous solution",
    "solving_steps": ["Step 1: brief description", "Step 2: brief description"],
    "verification": "How to verify this answer is correct"
  }
}

Important: Return ONLY the JSON object without markdown formatting.`

const AudioFile = `Listen to this audio clip and identify if it contains an aptitude problem or test question. If so:

1. Transcribe the question accurately
2. Identify the problem type (logical, quantitative, verbal, etc.)
3. If it's a multiple choice question, note the options
4. Provide the correct answer with brief explanation

If it's not an aptitude problem, briefly describe what the audio contains and suggest how it might be used for test preparation.

Be direct and concise in your response.`

const AudioInline = `Listen to this audio and identify any aptitude problems or test questions. Provide:

1. Question transcription (if present)
2. Problem type and difficulty
3. Correct answer with brief reasoning
4. Any test-taking tips relevant to this type of problem

Keep your response concise and focused on problem-solving.`

const Image = `Analyze this image for aptitude problems or test questions. Provide:

1. Question text (if readable)
2. Problem type (logical reasoning, quantitative, verbal, spatial, etc.)
3. Available options (if multiple choice)
4. Correct answer with brief explanation
5. Quick solving tip or pattern recognition

If the image contains diagrams, charts, or visual elements relevant to the problem, describe how they factor into the solution.

If no clear aptitude problem is found, briefly describe what the image contains and suggest how it might be used for test preparation.

Be concise and focus on delivering the correct answer efficiently.`

// Build joins the system instruction and a task instruction into the
// leading text part of a request.
func Build(system, task string) string {
	return strings.TrimSpace(system) + "\n\n" + strings.TrimSpace(task)
}

// Solve embeds the pretty-printed problem JSON into the solve instruction.
func Solve(problemJSON string) string {
	return strings.Replace(solve, "%PROBLEM%", problemJSON, 1)
}

// Debug embeds the problem JSON and the previous solution text.
func Debug(problemJSON, currentSolution string) string {
	r := strings.NewReplacer("%PROBLEM%", problemJSON, "%SOLUTION%", currentSolution)
	return r.Replace(debug)
}
