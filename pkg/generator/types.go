package generator

const (
	responseMIMEJSON       = "application/json"
	storyboardAspectRatio  = "16:9"
	imagesPerScene         = 1
	DefaultJPEGQuality     = 90
	DefaultLocale          = "Turkey"
	cacheKeySceneImage     = "scene_image:"
	segmentationUserText   = "台本を解析できませんでした。台本の形式を確認して、もう一度お試しください。"
	synthesisUserText      = "画像の生成に失敗しました。"
	responseExcerptMaxSize = 200
)
