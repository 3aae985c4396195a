package qrcode

import (
	"encoding/base64"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ErrorCorrectionLevel 二维码纠错级别
type ErrorCorrectionLevel = qrcode.RecoveryLevel

const (
	// Low 7% 的纠错能力
	Low ErrorCorrectionLevel = qrcode.Low
	// Medium 15% 的纠错能力（默认）
	Medium ErrorCorrectionLevel = qrcode.Medium
	// High 25% 的纠错能力
	High ErrorCorrectionLevel = qrcode.High
	// Highest 30% 的纠错能力
	Highest ErrorCorrectionLevel = qrcode.Highest
)

// Generate 生成二维码并返回 Base64 编码的 PNG
func Generate(content string, size int) (string, error) {
	bytes, err := qrcode.Encode(content, Medium, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// WritePNG 生成二维码并保存为 PNG 文件
func WritePNG(content string, size int, filename string) error {
	return qrcode.WriteFile(content, Medium, size, filename)
}

// Terminal 用半高方块字符渲染二维码，每个字符覆盖上下两个模块
// 深色模块输出为空白，适合深色背景终端
func Terminal(content string) (string, error) {
	q, err := qrcode.New(content, Low)
	if err != nil {
		return "", err
	}
	return render(q.Bitmap()), nil
}

func render(bitmap [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune(' ')
			case top:
				b.WriteRune('▄')
			case bottom:
				b.WriteRune('▀')
			default:
				b.WriteRune('█')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
