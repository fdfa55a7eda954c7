package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinBusinessNameLength   = 2
	MaxBusinessNameLength   = 200
	MaxDescriptionLength    = 5000
	MinListingTitleLength   = 3
	MaxListingTitleLength   = 200
	MinContactMessageLength = 10
	MaxContactMessageLength = 2000
	MaxNameLength           = 100
	MaxExternalLinkLength   = 500
	MaxImagesCount          = 20
	MaxPrice                = 100000000.0 // 100 миллионов
	MaxPhoneLength          = 30
	MinLatitude             = -90.0
	MaxLatitude             = 90.0
	MinLongitude            = -180.0
	MaxLongitude            = 180.0
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9\s\-()]{6,30}$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("некорректный формат email")
	}

	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}
	return nil
}

// ValidateOptionalEmail проверяет email, если он задан.
func ValidateOptionalEmail(email *string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	return ValidateEmail(*email)
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(fieldName string, link *string) error {
	if link == nil || *link == "" {
		return nil
	}
	linkStr := strings.TrimSpace(*link)

	if err := ValidateLength(fieldName, linkStr, 0, MaxExternalLinkLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("%s: некорректный формат URL", fieldName)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s должна начинаться с http:// или https://", fieldName)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s должна содержать доменное имя", fieldName)
	}
	return nil
}

// ValidatePhone проверяет телефон, если он задан.
func ValidatePhone(fieldName string, phone *string) error {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		return fmt.Errorf("%s имеет некорректный формат", fieldName)
	}
	return nil
}

// ValidateOptionalText проверяет необязательный текст на максимальную длину.
func ValidateOptionalText(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidateCoordinates проверяет пару координат. Обе должны быть заданы или обе пусты.
func ValidateCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("широта и долгота задаются вместе")
	}
	if lat == nil {
		return nil
	}
	if *lat < MinLatitude || *lat > MaxLatitude {
		return fmt.Errorf("широта должна быть в диапазоне от -90 до 90")
	}
	if *lng < MinLongitude || *lng > MaxLongitude {
		return fmt.Errorf("долгота должна быть в диапазоне от -180 до 180")
	}
	return nil
}

// ValidatePrice проверяет цену.
func ValidatePrice(price *float64) error {
	if price == nil {
		return nil
	}
	if *price < 0 {
		return fmt.Errorf("цена не может быть отрицательной")
	}
	if *price > MaxPrice {
		return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
	}
	return nil
}

// ValidateImages проверяет список ссылок на изображения.
func ValidateImages(images []string) error {
	if len(images) > MaxImagesCount {
		return fmt.Errorf("количество изображений не может превышать %d", MaxImagesCount)
	}
	for _, img := range images {
		if err := ValidateExternalLink("ссылка на изображение", &img); err != nil {
			return err
		}
	}
	return nil
}

// ValidateContactMessage проверяет текст обращения к бизнесу.
func ValidateContactMessage(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}
	return ValidateLength("сообщение", message, MinContactMessageLength, MaxContactMessageLength)
}
