package handler

import (
	"scentswap/internal/usecase"
)

var (
	swapHandler         *SwapHandler
	conversationHandler *ConversationHandler
	listingHandler      *ListingHandler
	userHandler         *UserHandler
	jobHandler          *JobHandler
)

func Setup(
	swapUseCase *usecase.SwapUseCase,
	conversationUseCase *usecase.ConversationUseCase,
	listingUseCase *usecase.ListingUseCase,
	userUseCase *usecase.UserUseCase,
	reconcileUseCase *usecase.ReconcileUseCase,
) {
	swapHandler = NewSwapHandler(swapUseCase)
	conversationHandler = NewConversationHandler(conversationUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	userHandler = NewUserHandler(userUseCase)
	jobHandler = NewJobHandler(reconcileUseCase)
}

func GetSwapHandler() *SwapHandler {
	return swapHandler
}

func GetConversationHandler() *ConversationHandler {
	return conversationHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetJobHandler() *JobHandler {
	return jobHandler
}
