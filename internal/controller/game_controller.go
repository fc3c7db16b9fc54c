package controller

import (
	"errors"

	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Routes mounts the game endpoints on router. The player id must already be
// in c.Locals("playerID").
func (gc *GameController) Routes(router fiber.Router) {
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	router.Post("/create", gc.CreateGame)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Get("/:gameId", gc.GetGameState)
	router.Get("/:gameId/moves", gc.GetValidMoves)
	router.Get("/:gameId/archive", gc.GetArchive)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Post("/:gameId/undo", gc.Undo)
	router.Post("/:gameId/rematch", gc.Rematch)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrAlreadyQueued),
		errors.Is(err, service.ErrNotQueued),
		errors.Is(err, service.ErrGameOver),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, service.ErrGameInProgress),
		errors.Is(err, service.ErrAlreadyConnected):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNotInGame),
		errors.Is(err, service.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidSquare):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	log.Debugf("player %s joining game %s", playerID, gameID)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetValidMoves(c *fiber.Ctx) error {
	moves, err := gc.gameService.GetValidMoves(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var body ws.MovePayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.HandleMove(c.UserContext(), gameID, playerID, body.From, body.To); err != nil {
		return fail(c, err)
	}
	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.HandleUndo(c.UserContext(), gameID, playerID); err != nil {
		return fail(c, err)
	}
	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) Rematch(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.HandleRematch(c.UserContext(), gameID, playerID); err != nil {
		return fail(c, err)
	}
	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetArchive(c *fiber.Ctx) error {
	recs, err := gc.gameService.GetArchive(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": recs,
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.LeaveMatchmaking(playerID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "left",
	})
}
