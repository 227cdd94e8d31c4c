package handle

import (
	"github.com/pkg/errors"

	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/types"
	"aptitude-helper/api/internal/util"
)

// ImageInput: картинка в теле запроса: base64 или data:URI.
type ImageInput struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type,omitempty"`
}

func (in ImageInput) attachment() (types.AttachmentPart, error) {
	data, hint, err := util.DecodeBase64MaybeDataURL(in.Data)
	if err != nil {
		return types.AttachmentPart{}, errors.Wrapf(llm.ErrInvalidInput, "bad image base64: %v", err)
	}
	if len(data) == 0 {
		return types.AttachmentPart{}, errors.Wrap(llm.ErrInvalidInput, "empty image")
	}
	return types.AttachmentPart{
		MIMEType: util.PickMIME(in.MIMEType, hint, util.DefaultImageMIME),
		Data:     data,
	}, nil
}

func attachments(in []ImageInput) ([]types.AttachmentPart, error) {
	out := make([]types.AttachmentPart, 0, len(in))
	for i, img := range in {
		part, err := img.attachment()
		if err != nil {
			return nil, errors.WithMessagef(err, "images[%d]", i)
		}
		out = append(out, part)
	}
	return out, nil
}
