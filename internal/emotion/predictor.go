package emotion

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Labels 情绪标签的固定顺序，必须和模型训练时一致
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// inputSize 模型期望的输入分辨率：64x64 灰度
const inputSize = 64

// Result 单次预测结果，置信度为百分比
type Result struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Predict 对任意已注册编解码器的图片字节做一次情绪预测。
// 流程：解码 → 灰度 64x64 → [0,1] 归一化 → 前向传播 → argmax。
// 无状态，可并发调用；图片损坏时返回解码错误，不做重试。
func (p *Predictor) Predict(imageBytes []byte) (*Result, error) {
	net, err := p.network()
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	in := preprocess(src)

	probs, err := net.forward(in)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	if len(probs) != len(net.Labels) {
		return nil, fmt.Errorf("model produced %d outputs for %d labels", len(probs), len(net.Labels))
	}

	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}

	return &Result{
		Emotion:    net.Labels[best],
		Confidence: round2(probs[best] * 100),
	}, nil
}

// preprocess 缩放为 64x64 单通道并归一化到 [0,1]
func preprocess(src image.Image) *tensor {
	gray := image.NewGray(image.Rect(0, 0, inputSize, inputSize))
	draw.BiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	t := newTensor(inputSize, inputSize, 1)
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			t.data[y*inputSize+x] = float64(gray.GrayAt(x, y).Y) / 255.0
		}
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
