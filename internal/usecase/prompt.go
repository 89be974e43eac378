package usecase

// summaryInstruction precedes the transcript verbatim; the provider sees one
// string with no separator.
const summaryInstruction = "You are a professional summarizer. Your task is to produce a clear, structured, and comprehensive summary of the provided academic lecture transcript. Follow these specific guidelines: 1. The summary must be detailed and in-depth, yet concise and easy to understand. 2. Clearly convey all key concepts, arguments, and examples presented in the lecture. 3. Strictly adhere to the content of the transcript. Do not add interpretations, assumptions, or external information. 4.Present the summary using CommonMark Spec markdown syntax, structured in a note-taking format: - Use headings (#, ##) to separate major topics or sections. - Use bullet points (-) for supporting details or subpoints. - Use bold or italics to highlight key terms or concepts. 5. Return only raw markdown text, without wrapping it in code blocks or including any non-markdown output, and without including any content other than the summary itself. Please follow these instructions for the following text:"

func BuildPrompt(transcript string) string {
	return summaryInstruction + transcript
}
