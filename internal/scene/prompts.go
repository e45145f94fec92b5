package scene

import "fmt"

const imageStyle = "A clean, modern, and engaging illustration for a Korean news video. " +
	"Soft, friendly color palette. Absolutely no text in the image. " +
	"Style: Flat design, simple, clear, optimistic. "

func imagePrompt(text string) string {
	return imageStyle + fmt.Sprintf("Story focus: %q", text)
}

const introSystem = "You are a friendly and engaging announcer for a senior health news video."

func introUser(title string) string {
	return "Based on the following news headline, create a warm and welcoming opening sentence for the video. " +
		"The sentence should be concise, natural-sounding, and in Korean.\n\n" +
		"Headline: '" + title + "'\n\n" +
		"Example:\n" +
		"- If the headline is 'A new study finds apples are effective for heart health [Reporter Kim]', " +
		"a good opening would be '안녕하세요! 오늘은 사과가 심장 건강에 어떤 도움을 주는지 함께 알아보겠습니다.'\n" +
		"- If the headline is 'The importance of regular check-ups for preventing diabetes', " +
		"a good opening would be '안녕하세요, 건강에 관심 많은 시청자 여러분! 정기적인 건강검진이 당뇨 예방에 얼마나 중요한지 알고 계신가요?'\n\n" +
		"Now, create the opening sentence for the headline provided above."
}

func scriptPrompt(article string) string {
	return "당신은 50-70대 시청자를 위한 건강 정보 영상의 전문 작가입니다.\n" +
		"주어진 기사 내용을 바탕으로, 친절하고 이해하기 쉬운 톤으로 영상 대본을 작성해 주세요.\n" +
		"대본은 약 150-200 단어 길이로 요약되어야 합니다.\n" +
		"장면 전환이나 시간 표시 없이, 오직 나레이션 대본만 작성해 주세요.\n" +
		"**대본은 반드시 한국어로 작성해야 합니다.**\n\n" +
		"기사 내용:\n---\n" + article + "\n---\n\n" +
		"이제 영상 대본을 작성해 주세요."
}
