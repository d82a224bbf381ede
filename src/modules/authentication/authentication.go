package authentication

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vibely/src/core/config"
	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// issueJwtToken generates a JWT token for authenticated users.
func issueJwtToken(userID string, username string, email string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["sub"] = userID
	claims["username"] = username
	claims["email"] = email
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(30 * 24 * time.Hour).Unix()

	secretKey := config.Config("JWT_SECRET")
	return token.SignedString([]byte(secretKey))
}

type signUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignUp handles user registration.
func SignUp(c *fiber.Ctx) error {
	db := database.DB

	var input signUpInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid signup data", err)
	}

	var taken int64
	if err := db.Model(&models.User{}).Where("username = ?", input.Username).Count(&taken).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to check username", err)
	}
	if taken > 0 {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Username already exists", nil)
	}
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&taken).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to check email", err)
	}
	if taken > 0 {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Email already exists", nil)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Username: input.Username,
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPwd),
	}
	if err := db.Create(&user).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to create user account", err)
	}

	token, err := issueJwtToken(user.ID.String(), user.Username, user.Email)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusCreated, "Account created successfully", fiber.Map{
		"token": token,
		"user":  user,
	})
}

type signInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignIn handles user authentication.
func SignIn(c *fiber.Ctx) error {
	db := database.DB

	var input signInInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid login data", err)
	}

	user := new(models.User)
	if result := db.Where("email = ?", input.Email).First(user); result.Error != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid login credentials", result.Error)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid login credentials", err)
	}

	token, err := issueJwtToken(user.ID.String(), user.Username, user.Email)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Sign-in successful", fiber.Map{
		"token": token,
		"user":  user,
	})
}
